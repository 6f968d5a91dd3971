package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"

	"github.com/go-playground/validator/v10"
)

// PresetService manages a user's threshold presets.
type PresetService struct {
	store    domrepo.PresetStore
	validate *validator.Validate
}

func NewPresetService(store domrepo.PresetStore) *PresetService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(validateOrdering, models.ThresholdPreset{})
	return &PresetService{store: store, validate: v}
}

// validateOrdering checks that thresholds get stricter from warning to caution:
// ascending for higher-is-better metrics, descending otherwise.
func validateOrdering(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.ThresholdPreset)
	for _, kind := range models.MetricKinds {
		th, _ := p.For(kind)
		if kind.HigherIsBetter() {
			if th.Warning >= th.Danger {
				sl.ReportError(th.Warning, string(kind)+".warning", "Warning", "lt_danger", "")
			}
			if th.Danger >= th.Caution {
				sl.ReportError(th.Danger, string(kind)+".danger", "Danger", "lt_caution", "")
			}
			continue
		}
		if th.Warning <= th.Danger {
			sl.ReportError(th.Warning, string(kind)+".warning", "Warning", "gt_danger", "")
		}
		if th.Danger <= th.Caution {
			sl.ReportError(th.Danger, string(kind)+".danger", "Danger", "gt_caution", "")
		}
	}
}

// Validate returns a *models.PresetValidationError listing every broken rule.
func (s *PresetService) Validate(p models.ThresholdPreset) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &models.PresetValidationError{}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, violationMessage(fe))
	}
	return out
}

func violationMessage(fe validator.FieldError) string {
	metric, bound, _ := strings.Cut(fe.Field(), ".")
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "lt_danger":
		return metric + ": warning must be less than danger"
	case "lt_caution":
		return metric + ": danger must be less than caution"
	case "gt_danger":
		return metric + ": warning must be greater than danger"
	case "gt_caution":
		return metric + ": danger must be greater than caution"
	}
	if bound != "" {
		return fmt.Sprintf("%s: %s failed %s", metric, bound, fe.Tag())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// List returns the user's presets, default first, then by name.
func (s *PresetService) List(ctx context.Context, userID string) ([]models.ThresholdPreset, string, error) {
	presets, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	def, err := s.store.Default(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	sort.SliceStable(presets, func(i, j int) bool {
		di, dj := presets[i].Name == def, presets[j].Name == def
		if di != dj {
			return di
		}
		return presets[i].Name < presets[j].Name
	})
	return presets, def, nil
}

func (s *PresetService) Get(ctx context.Context, userID, name string) (*models.ThresholdPreset, error) {
	return s.store.Get(ctx, userID, name)
}

// Save validates and stores a preset, replacing one of the same name.
func (s *PresetService) Save(ctx context.Context, userID string, p models.ThresholdPreset) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if err := s.Validate(p); err != nil {
		return err
	}
	return s.store.Save(ctx, userID, p)
}

// Delete removes a preset. The current default cannot be deleted.
func (s *PresetService) Delete(ctx context.Context, userID, name string) error {
	def, err := s.store.Default(ctx, userID)
	if err != nil {
		return err
	}
	if def != "" && def == name {
		return fmt.Errorf("delete %q: %w", name, models.ErrDefaultPresetLocked)
	}
	return s.store.Delete(ctx, userID, name)
}

// SetDefault marks an existing preset as the user's default.
func (s *PresetService) SetDefault(ctx context.Context, userID, name string) error {
	if _, err := s.store.Get(ctx, userID, name); err != nil {
		return err
	}
	return s.store.SetDefault(ctx, userID, name)
}

// Resolve picks the preset for an evaluation: the named one if given, else the
// user's default, else the built-in system preset.
func (s *PresetService) Resolve(ctx context.Context, userID, name string) (*models.ThresholdPreset, error) {
	if name == models.SystemPresetName {
		p := models.SystemPreset()
		return &p, nil
	}
	if name != "" {
		return s.store.Get(ctx, userID, name)
	}
	def, err := s.store.Default(ctx, userID)
	if err != nil {
		return nil, err
	}
	if def != "" {
		p, err := s.store.Get(ctx, userID, def)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, models.ErrPresetNotFound) {
			return nil, err
		}
	}
	p := models.SystemPreset()
	return &p, nil
}
