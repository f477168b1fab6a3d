package domain

import (
	"errors"
	"testing"
)

func fullSelection() map[Category]Flag {
	return map[Category]Flag{
		CategoryPersonality:  FlagClingy,
		CategoryActivity:     FlagActive,
		CategoryCuriosity:    FlagCurious,
		CategoryTrainability: FlagEasyToTrain,
		CategoryGrooming:     FlagLowGrooming,
		CategoryCoat:         FlagShortHair,
		CategoryAffection:    FlagAffectionate,
	}
}

func TestNewUserProfile(t *testing.T) {
	t.Run("una seleccion por categoria", func(t *testing.T) {
		p, err := NewUserProfile(fullSelection())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		set := 0
		for _, f := range AllFlags() {
			if p.Flags.Has(f) {
				set++
			}
		}
		if set != NumCategories {
			t.Fatalf("expected %d flags set, got %d", NumCategories, set)
		}
		for _, c := range AllCategories() {
			n := 0
			for _, f := range c.Flags() {
				if p.Flags.Has(f) {
					n++
				}
			}
			if n != 1 {
				t.Fatalf("expected exactly one flag in %s, got %d", c, n)
			}
		}
	})

	t.Run("categoria faltante", func(t *testing.T) {
		sel := fullSelection()
		delete(sel, CategoryCoat)
		if _, err := NewUserProfile(sel); !errors.Is(err, ErrMissingCategory) {
			t.Fatalf("expected ErrMissingCategory, got %v", err)
		}
	})

	t.Run("flag de otra categoria", func(t *testing.T) {
		sel := fullSelection()
		sel[CategoryActivity] = FlagHairless
		if _, err := NewUserProfile(sel); !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("expected ErrInvalidSelection, got %v", err)
		}
	})
}

func TestParseSelections(t *testing.T) {
	raw := map[string]string{
		"personality":  "粘人",
		"活动量":          "calm",
		"curiosity":    "incurious",
		"trainability": "hard_to_train",
		"grooming":     "梳理需求高",
		"coat":         "hairless",
		"affection":    "Reserved",
	}
	sel, err := ParseSelections(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel[CategoryPersonality] != FlagClingy || sel[CategoryActivity] != FlagCalm || sel[CategoryAffection] != FlagReserved {
		t.Fatalf("unexpected parsed selections: %+v", sel)
	}
	if _, err := NewUserProfile(sel); err != nil {
		t.Fatalf("expected valid profile, got %v", err)
	}

	if _, err := ParseSelections(map[string]string{"personality": "grumpy"}); !errors.Is(err, ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}
	if _, err := ParseSelections(map[string]string{"size": "clingy"}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := ParseSelections(map[string]string{"personality": "clingy", "性格": "independent"}); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected duplicate selection error, got %v", err)
	}
}

func TestMatchScore(t *testing.T) {
	p, err := NewUserProfile(fullSelection())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var all FlagVector
	for _, f := range AllFlags() {
		all.Set(f)
	}
	if got := (BreedRecord{Flags: all}).MatchScore(p); got != NumCategories {
		t.Fatalf("expected score %d for all-flags breed, got %d", NumCategories, got)
	}
	if got := (BreedRecord{}).MatchScore(p); got != 0 {
		t.Fatalf("expected score 0 for empty breed, got %d", got)
	}

	var partial FlagVector
	partial.Set(FlagClingy)
	partial.Set(FlagCalm)
	partial.Set(FlagShortHair)
	if got := (BreedRecord{Flags: partial}).MatchScore(p); got != 2 {
		t.Fatalf("expected score 2, got %d", got)
	}
	if got := (BreedRecord{Flags: all}).MatchScore(UserProfile{}); got != 0 {
		t.Fatalf("expected zero profile to score 0, got %d", got)
	}
}

func TestFlagSchema(t *testing.T) {
	total := 0
	for _, c := range AllCategories() {
		total += len(c.Flags())
		for _, f := range c.Flags() {
			if f.Category() != c {
				t.Fatalf("flag %s registered under %s but reports %s", f, c, f.Category())
			}
		}
	}
	if total != NumFlags {
		t.Fatalf("expected %d flags across categories, got %d", NumFlags, total)
	}
	if len(CategoryCoat.Flags()) != 3 {
		t.Fatalf("expected coat to be a 3-way choice")
	}
}
