package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

func TestVerificationApproveFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	migrant := f.migrant(t, "asha@example.com")
	agency := f.agency(t, "hands@example.org", "1234567890", true)

	requested, err := f.verification.RequestVerification(ctx, migrant.ID, agency.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, requested.VerificationStatus)
	require.NotNil(t, requested.AgencyID)
	assert.Equal(t, agency.ID, *requested.AgencyID)

	pending, err := f.verification.PendingRequests(ctx, agency.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, migrant.ID, pending[0].ID)

	decided, err := f.verification.Decide(ctx, agency.ID, migrant.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationApproved, decided.VerificationStatus)
	assert.True(t, decided.AgencyVerified())

	pending, err = f.verification.PendingRequests(ctx, agency.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	linked, err := f.verification.LinkedMigrants(ctx, agency.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.True(t, linked[0].AgencyVerified())

	stats, err := f.verification.Stats(ctx, agency.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AgencyStats{Approved: 1}, stats)

	profile, err := f.verification.Profile(ctx, migrant.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Agency)
	assert.Equal(t, agency.Name, profile.Agency.Name)

	var types []events.EventType
	for _, e := range f.published {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventMigrantVerificationRequested)
	assert.Contains(t, types, events.EventMigrantVerificationDecided)
}

func TestRequestVerificationRequiresVerifiedAgency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	migrant := f.migrant(t, "asha@example.com")
	unverified := f.agency(t, "hands@example.org", "1234567890", false)

	_, err := f.verification.RequestVerification(ctx, migrant.ID, unverified.ID)
	de := domainErr(t, err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Contains(t, de.Details, "agencyId")

	_, err = f.verification.RequestVerification(ctx, migrant.ID, "missing")
	assert.Equal(t, http.StatusBadRequest, domainErr(t, err).HTTPStatus)
}

func TestRequestVerificationAfterApprovalConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	migrant := f.migrant(t, "asha@example.com")
	first := f.agency(t, "hands@example.org", "1234567890", true)
	second := f.agency(t, "care@example.org", "0987654321", true)

	_, err := f.verification.RequestVerification(ctx, migrant.ID, first.ID)
	require.NoError(t, err)
	_, err = f.verification.Decide(ctx, first.ID, migrant.ID, true)
	require.NoError(t, err)

	_, err = f.verification.RequestVerification(ctx, migrant.ID, second.ID)
	assert.Equal(t, http.StatusConflict, domainErr(t, err).HTTPStatus)
}

func TestRejectedMigrantMayAskAnotherAgency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	migrant := f.migrant(t, "asha@example.com")
	first := f.agency(t, "hands@example.org", "1234567890", true)
	second := f.agency(t, "care@example.org", "0987654321", true)

	_, err := f.verification.RequestVerification(ctx, migrant.ID, first.ID)
	require.NoError(t, err)
	_, err = f.verification.Decide(ctx, first.ID, migrant.ID, false)
	require.NoError(t, err)

	requested, err := f.verification.RequestVerification(ctx, migrant.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, requested.VerificationStatus)
	assert.Equal(t, second.ID, *requested.AgencyID)
}

func TestDecideRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	migrant := f.migrant(t, "asha@example.com")
	agency := f.agency(t, "hands@example.org", "1234567890", true)
	other := f.agency(t, "care@example.org", "0987654321", true)

	_, err := f.verification.Decide(ctx, agency.ID, migrant.ID, true)
	assert.Equal(t, http.StatusNotFound, domainErr(t, err).HTTPStatus, "not linked yet")

	_, err = f.verification.RequestVerification(ctx, migrant.ID, agency.ID)
	require.NoError(t, err)

	_, err = f.verification.Decide(ctx, other.ID, migrant.ID, true)
	assert.Equal(t, http.StatusNotFound, domainErr(t, err).HTTPStatus, "linked to another agency")

	_, err = f.verification.Decide(ctx, agency.ID, migrant.ID, true)
	require.NoError(t, err)

	again, err := f.verification.Decide(ctx, agency.ID, migrant.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationApproved, again.VerificationStatus)

	_, err = f.verification.Decide(ctx, agency.ID, migrant.ID, false)
	assert.Equal(t, http.StatusConflict, domainErr(t, err).HTTPStatus)
}

func TestSetMigrantStatusOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	migrant := f.migrant(t, "asha@example.com")

	updated, err := f.verification.SetMigrantStatus(ctx, migrant.ID, true)
	require.NoError(t, err)
	require.NotNil(t, updated.IsMigrant)
	assert.True(t, *updated.IsMigrant)

	_, err = f.verification.SetMigrantStatus(ctx, migrant.ID, false)
	assert.Equal(t, http.StatusConflict, domainErr(t, err).HTTPStatus)

	_, err = f.verification.SetMigrantStatus(ctx, "missing", true)
	assert.Equal(t, "Migrant not found", domainErr(t, err).Message)
}

func TestVerifyMigrantStatus(t *testing.T) {
	tests := []struct {
		name          string
		documentState string
		currentState  string
		want          bool
	}{
		{"different states", "Bihar", "Maharashtra", true},
		{"same state ignoring case", "Bihar", " bihar ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.verification.documents = fakeDocuments{state: tt.documentState}
			f.verification.geocoder = fakeGeocoder{state: tt.currentState}
			migrant := f.migrant(t, "asha@example.com")

			check, err := f.verification.VerifyMigrantStatus(context.Background(), migrant.ID, MigrantCheckInput{
				Filename:  "aadhaar.png",
				Document:  []byte("image"),
				Latitude:  19.07,
				Longitude: 72.87,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, check.IsMigrant)
			require.NotNil(t, check.Migrant.IsMigrant)
			assert.Equal(t, tt.want, *check.Migrant.IsMigrant)
		})
	}
}

func TestVerifyMigrantStatusFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	migrant := f.migrant(t, "asha@example.com")

	_, err := f.verification.VerifyMigrantStatus(ctx, migrant.ID, MigrantCheckInput{Latitude: 91})
	de := domainErr(t, err)
	assert.Contains(t, de.Details, "file")
	assert.Contains(t, de.Details, "latitude")

	f.verification.geocoder = fakeGeocoder{err: apperrors.NewUpstreamError("geocoder", errors.New("timeout"))}
	_, err = f.verification.VerifyMigrantStatus(ctx, migrant.ID, MigrantCheckInput{Document: []byte("x")})
	assert.Equal(t, http.StatusBadGateway, domainErr(t, err).HTTPStatus)

	profile, err := f.verification.Profile(ctx, migrant.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.Migrant.IsMigrant, "failed check must not record a status")
}
