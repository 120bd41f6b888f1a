package corroborate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/score"
)

func item(t model.EvidenceType, c float64) model.Evidence {
	return model.Evidence{EvidenceType: t, EvidenceWeight: Weight(t), CorroborationScore: c}
}

func TestFold_NoEvidenceIsPrior(t *testing.T) {
	if got := Fold(nil, Prior); got != Prior {
		t.Errorf("Fold(nil) = %v, want %v", got, Prior)
	}
}

func TestFold_NeutralEvidenceLeavesPrior(t *testing.T) {
	var items []model.Evidence
	for _, et := range model.EvidenceTypes() {
		for i := 0; i < 5; i++ {
			items = append(items, item(et, 0.5))
		}
	}
	if got := Fold(items, Prior); got != Prior {
		t.Errorf("neutral evidence moved the score to %v", got)
	}
}

func TestUpdate_StaysStrictlyInsideUnitInterval(t *testing.T) {
	up, down := Prior, Prior
	for i := 0; i < 10000; i++ {
		up = Update(up, 1, 1)
		down = Update(down, 0, 1)
		if !(up > 0 && up < 1) || !(down > 0 && down < 1) {
			t.Fatalf("step %d escaped (0,1): up=%v down=%v", i, up, down)
		}
	}
}

func TestUpdate_MonotonicTowardExtremes(t *testing.T) {
	step := logit(0.9)
	bound := Bound()

	s := Prior
	for i := 0; i < 50; i++ {
		next := Update(s, 0.9, 1)
		if logit(s)+step < MaxLogOdds {
			if !(next > s) {
				t.Fatalf("corroboration did not raise the score at step %d: %v -> %v", i, s, next)
			}
		} else if math.Abs(next-bound) > 1e-12 {
			t.Fatalf("step %d past the log-odds bound: got %v, want %v", i, next, bound)
		}
		if next > bound+1e-12 || next >= 1 {
			t.Fatalf("step %d exceeded the bound: %v", i, next)
		}
		s = next
	}
	if math.Abs(s-bound) > 1e-12 {
		t.Errorf("50 strong corroborations should saturate at %v, got %v", bound, s)
	}

	s = Prior
	for i := 0; i < 50; i++ {
		next := Update(s, 0.1, 1)
		if logit(s)-step > -MaxLogOdds {
			if !(next < s) {
				t.Fatalf("falsification did not lower the score at step %d: %v -> %v", i, s, next)
			}
		} else if math.Abs(next-(1-bound)) > 1e-12 {
			t.Fatalf("step %d past the log-odds bound: got %v, want %v", i, next, 1-bound)
		}
		if next < 1-bound-1e-12 || next <= 0 {
			t.Fatalf("step %d exceeded the bound: %v", i, next)
		}
		s = next
	}
}

func TestUpdate_HeavierEvidenceMovesFurther(t *testing.T) {
	data := Update(Prior, 0.9, Weight(model.EvidenceData))
	testimony := Update(Prior, 0.9, Weight(model.EvidenceTestimony))
	anecdote := Update(Prior, 0.9, Weight(model.EvidenceAnecdote))
	if !(data > testimony && testimony > anecdote && anecdote > Prior) {
		t.Errorf("expected data > testimony > anecdote > prior, got %v %v %v", data, testimony, anecdote)
	}

	data = Update(Prior, 0.1, Weight(model.EvidenceData))
	fallacy := Update(Prior, 0.1, Weight(model.EvidenceFallacy))
	if !(data < fallacy && fallacy < Prior) {
		t.Errorf("expected data < fallacy < prior, got %v %v", data, fallacy)
	}
}

func TestUpdate_OddsMultiplication(t *testing.T) {
	// odds 1.5 times (0.9/0.1)^1 = 13.5
	got := Update(Prior, 0.9, 1)
	want := 13.5 / 14.5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Update = %v, want %v", got, want)
	}
}

func TestFold_ThreeStrongDataItems(t *testing.T) {
	items := []model.Evidence{
		item(model.EvidenceData, 0.9),
		item(model.EvidenceData, 0.9),
		item(model.EvidenceData, 0.9),
	}
	got := Fold(items, Prior)
	if !(got > Prior && got < 1) {
		t.Fatalf("hebbian score %v outside (prior, 1)", got)
	}
	if got < 0.7 {
		t.Fatalf("three strong data items should reach looking-good, got %v", got)
	}
	if status := score.ClassifyStatus(got); status != model.StatusLookingGood {
		t.Errorf("status = %s, want %s", status, model.StatusLookingGood)
	}
}

func TestFold_FallsBackToTypeWeight(t *testing.T) {
	withWeight := Fold([]model.Evidence{item(model.EvidenceTestimony, 0.8)}, Prior)
	typeOnly := Fold([]model.Evidence{{EvidenceType: model.EvidenceTestimony, CorroborationScore: 0.8}}, Prior)
	if withWeight != typeOnly {
		t.Errorf("missing weight should use the type weight: %v vs %v", withWeight, typeOnly)
	}
}

func TestFold_RandomSequencesStayBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := model.EvidenceTypes()

	for trial := 0; trial < 500; trial++ {
		n := rng.Intn(200)
		items := make([]model.Evidence, n)
		for i := range items {
			items[i] = item(types[rng.Intn(len(types))], rng.Float64())
		}
		got := Fold(items, Prior)
		if !(got > 0 && got < 1) {
			t.Fatalf("trial %d: score %v escaped (0,1)", trial, got)
		}
	}
}

func TestWeight(t *testing.T) {
	cases := map[model.EvidenceType]float64{
		model.EvidenceData:      1.0,
		model.EvidenceTestimony: 0.7,
		model.EvidenceArgument:  0.4,
		model.EvidenceAnecdote:  0.2,
		model.EvidenceFallacy:   0.1,
		"unknown":               0.4,
	}
	for et, want := range cases {
		if got := Weight(et); got != want {
			t.Errorf("Weight(%s) = %v, want %v", et, got, want)
		}
	}
}
