package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

func TestAgencyUniqueness(t *testing.T) {
	ctx := context.Background()
	agencies := NewStore().Agencies()

	require.NoError(t, agencies.Create(ctx, &domain.Agency{Name: "A", Email: "a@x.org", LicenseNumber: "1234567890"}))

	err := agencies.Create(ctx, &domain.Agency{Name: "B", Email: "b@x.org", LicenseNumber: "1234567890"})
	var uv *repository.UniqueViolation
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "licenseNumber", uv.Field)

	err = agencies.Create(ctx, &domain.Agency{Name: "C", Email: "a@x.org", LicenseNumber: "0000000000"})
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "email", uv.Field)
}

func TestAgencyRejectUnlinksMigrants(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	agency := &domain.Agency{Name: "A", Email: "a@x.org", LicenseNumber: "1234567890"}
	require.NoError(t, store.Agencies().Create(ctx, agency))

	migrant := &domain.Migrant{FirstName: "M", Email: "m@x.org", AgencyID: &agency.ID, VerificationStatus: domain.VerificationApproved}
	require.NoError(t, store.Migrants().Create(ctx, migrant))

	rejection := &domain.AgencyRejection{AgencyID: agency.ID, RejectedBy: "g1", Reason: "fake license"}
	require.NoError(t, store.Agencies().Reject(ctx, rejection))
	assert.Equal(t, "A", rejection.Name)

	_, err := store.Agencies().GetByID(ctx, agency.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	got, err := store.Migrants().GetByID(ctx, migrant.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AgencyID)
	assert.Equal(t, domain.VerificationNone, got.VerificationStatus)

	counts, err := store.Agencies().Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Total)
	assert.Equal(t, 1, counts.Rejected)

	assert.ErrorIs(t, store.Agencies().Reject(ctx, &domain.AgencyRejection{AgencyID: agency.ID}), pgx.ErrNoRows)
}

func TestAgencyKeysSurviveCallerBufferReuse(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	agency := &domain.Agency{Name: "A", Email: "a@x.org", LicenseNumber: "1234567890"}
	require.NoError(t, store.Agencies().Create(ctx, agency))
	realID := agency.ID

	buf := []byte(realID)
	require.NoError(t, store.Agencies().SetVerified(ctx, unsafe.String(&buf[0], len(buf))))
	copy(buf, strings.Repeat("x", len(buf)))

	got, err := store.Agencies().GetByID(ctx, realID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	buf = []byte(realID)
	rejection := &domain.AgencyRejection{AgencyID: unsafe.String(&buf[0], len(buf)), RejectedBy: "g1"}
	require.NoError(t, store.Agencies().Reject(ctx, rejection))
	copy(buf, strings.Repeat("y", len(buf)))
	assert.Equal(t, realID, rejection.AgencyID)
}

func TestComplaintListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	migrant := &domain.Migrant{FirstName: "M", Email: "m@x.org"}
	require.NoError(t, store.Migrants().Create(ctx, migrant))

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		c := &domain.Complaint{UserID: migrant.ID, Text: text, Status: domain.ComplaintPending, RoutingState: domain.RoutingUnrouted}
		require.NoError(t, store.Complaints().Create(ctx, c))
		ids = append(ids, c.ID)
	}

	list, err := store.Complaints().List(ctx, repository.ComplaintFilter{UserID: &migrant.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})

	page, err := store.Complaints().List(ctx, repository.ComplaintFilter{UserID: &migrant.ID, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestDepartmentNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	departments := NewStore().Departments()
	require.NoError(t, departments.Create(ctx, &domain.Department{Name: "Housing", Email: "h@gov.in"}))

	got, err := departments.GetByName(ctx, "housing")
	require.NoError(t, err)
	assert.Equal(t, "Housing", got.Name)

	err = departments.Create(ctx, &domain.Department{Name: "HOUSING", Email: "other@gov.in"})
	var uv *repository.UniqueViolation
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "name", uv.Field)
}
