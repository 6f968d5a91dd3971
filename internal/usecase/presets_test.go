package usecase

import (
	"context"
	"errors"
	"testing"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPreset(name string) models.ThresholdPreset {
	p := models.SystemPreset()
	p.Name = name
	p.Description = "memo"
	return p
}

func TestValidateOrdering(t *testing.T) {
	svc := NewPresetService(repository.NewMemoryPresetStore())
	require.NoError(t, svc.Validate(validPreset("mine")))

	p := validPreset("mine")
	p.NetIncome = models.Thresholds{Warning: 10, Danger: 5, Caution: 15}
	p.PER = models.Thresholds{Warning: 30, Danger: 20, Caution: 25}
	p.Description = ""

	err := svc.Validate(p)
	var verr *models.PresetValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.ElementsMatch(t, []string{
		"description is required",
		"netIncome: warning must be less than danger",
		"per: danger must be greater than caution",
	}, verr.Violations)
}

func TestValidateEqualBoundsRejected(t *testing.T) {
	svc := NewPresetService(repository.NewMemoryPresetStore())
	p := validPreset("mine")
	p.Debt = models.Thresholds{Warning: 200, Danger: 200, Caution: 100}

	var verr *models.PresetValidationError
	require.ErrorAs(t, svc.Validate(p), &verr)
	assert.Equal(t, []string{"debt: warning must be greater than danger"}, verr.Violations)
}

func TestPresetLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(repository.NewMemoryPresetStore())

	require.NoError(t, svc.Save(ctx, "u1", validPreset("beta")))
	require.NoError(t, svc.Save(ctx, "u1", validPreset("alpha")))
	require.NoError(t, svc.Save(ctx, "u1", validPreset("zeta")))

	assert.ErrorIs(t, svc.SetDefault(ctx, "u1", "missing"), models.ErrPresetNotFound)
	require.NoError(t, svc.SetDefault(ctx, "u1", "zeta"))

	list, def, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "zeta", def)
	names := []string{}
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "beta"}, names)

	assert.ErrorIs(t, svc.Delete(ctx, "u1", "zeta"), models.ErrDefaultPresetLocked)
	require.NoError(t, svc.Delete(ctx, "u1", "alpha"))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", "alpha"), models.ErrPresetNotFound)
}

func TestResolvePreset(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(repository.NewMemoryPresetStore())

	p, err := svc.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, models.SystemPresetName, p.Name)

	require.NoError(t, svc.Save(ctx, "u1", validPreset("mine")))
	require.NoError(t, svc.SetDefault(ctx, "u1", "mine"))
	p, err = svc.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "mine", p.Name)

	p, err = svc.Resolve(ctx, "u1", models.SystemPresetName)
	require.NoError(t, err)
	assert.Equal(t, models.SystemPresetName, p.Name)

	_, err = svc.Resolve(ctx, "u1", "other")
	assert.ErrorIs(t, err, models.ErrPresetNotFound)
}
