package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgencyVerifiedRequiresAgency(t *testing.T) {
	agencyID := "a1"
	tests := []struct {
		name   string
		agency *string
		status VerificationStatus
		want   bool
	}{
		{"approved with agency", &agencyID, VerificationApproved, true},
		{"approved without agency", nil, VerificationApproved, false},
		{"pending", &agencyID, VerificationPending, false},
		{"rejected", &agencyID, VerificationRejected, false},
		{"none", nil, VerificationNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrant{AgencyID: tt.agency, VerificationStatus: tt.status}
			assert.Equal(t, tt.want, m.AgencyVerified())
		})
	}
}

func TestComplaintStatusValid(t *testing.T) {
	for _, s := range ComplaintStatuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, ComplaintStatus("solved").Valid())
	assert.False(t, ComplaintStatus("").Valid())
}

func TestCredentialKinds(t *testing.T) {
	m := &Migrant{ID: "m", FirstName: "Asha", LastName: "Rao"}
	assert.Equal(t, KindMigrant, m.Credential().Kind)
	assert.Equal(t, "Asha Rao", m.Credential().Name)
	assert.Equal(t, KindAgency, (&Agency{}).Credential().Kind)
	assert.Equal(t, KindDepartment, (&Department{}).Credential().Kind)
	assert.Equal(t, KindGovernment, (&Government{}).Credential().Kind)
	assert.True(t, KindGovernment.Valid())
	assert.False(t, IdentityKind("STAFF").Valid())
}
