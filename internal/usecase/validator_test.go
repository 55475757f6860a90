package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

func TestValidateAcceptsGoodSnapshot(t *testing.T) {
	v := NewSnapshotValidator(4)
	assert.NoError(t, v.Validate(testSnapshot(100)))
}

func TestValidateRejectsNilAndEmpty(t *testing.T) {
	v := NewSnapshotValidator(4)
	assert.ErrorIs(t, v.Validate(nil), models.ErrValidationFailure)

	s := testSnapshot(100)
	s.Symbol = ""
	assert.ErrorIs(t, v.Validate(s), models.ErrValidationFailure)
}

func TestValidateRejectsWrongSide(t *testing.T) {
	v := NewSnapshotValidator(4)
	s := testSnapshot(100)
	s.Supports[0].Side = models.SideResistance
	refingerprint(t, s)
	assert.ErrorIs(t, v.Validate(s), models.ErrValidationFailure)
}

func TestValidateRejectsSupportAbovePrice(t *testing.T) {
	v := NewSnapshotValidator(4)
	s := testSnapshot(95) // support core [95,96] now straddles price
	assert.ErrorIs(t, v.Validate(s), models.ErrValidationFailure)
}

func TestValidateRejectsUnorderedShortlist(t *testing.T) {
	v := NewSnapshotValidator(4)
	s := testSnapshot(100)
	far := testZone(models.SideSupport, 80, 81)
	near := s.Supports[0]
	s.Supports = []models.Zone{far, near}
	refingerprint(t, s)
	assert.ErrorIs(t, v.Validate(s), models.ErrValidationFailure)
}

func TestValidateRejectsOversizedShortlist(t *testing.T) {
	v := NewSnapshotValidator(1)
	s := testSnapshot(100)
	second := testZone(models.SideSupport, 90, 91)
	s.Supports = append(s.Supports, second)
	refingerprint(t, s)
	assert.ErrorIs(t, v.Validate(s), models.ErrValidationFailure)
}

func TestValidateRejectsFingerprintMismatch(t *testing.T) {
	v := NewSnapshotValidator(4)
	s := testSnapshot(100)
	s.Fingerprint = "deadbeef"
	assert.ErrorIs(t, v.Validate(s), models.ErrValidationFailure)
}

func TestValidateRejectsBadStrength(t *testing.T) {
	v := NewSnapshotValidator(4)
	s := testSnapshot(100)
	s.AllZones[0].Strength = 7
	refingerprint(t, s)
	assert.ErrorIs(t, v.Validate(s), models.ErrValidationFailure)
}

func refingerprint(t *testing.T, s *models.Snapshot) {
	t.Helper()
	fp, err := Fingerprint(s)
	require.NoError(t, err)
	s.Fingerprint = fp
}
