package rewards_test

import (
	"errors"
	"testing"

	"contribledger/native/rewards"
)

func TestContributionLogAppendsInOrder(t *testing.T) {
	log := rewards.NewContributionLog(newTestState(t))

	first := rewards.ContributionMetrics{DataQuality: 80, ModelImprovement: 70, ParticipationFrequency: 90, Timestamp: 1}
	second := rewards.ContributionMetrics{DataQuality: 50, ModelImprovement: 60, ParticipationFrequency: 40, Timestamp: 2}
	if err := log.Record("fb-alpha", first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := log.Record("fb-alpha", second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	history, err := log.Contributions("fb-alpha")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0] != first || history[1] != second {
		t.Fatalf("history out of order: %+v", history)
	}
}

func TestContributionLogIdenticalRecordsKept(t *testing.T) {
	log := rewards.NewContributionLog(newTestState(t))
	m := rewards.ContributionMetrics{DataQuality: 10, ModelImprovement: 10, ParticipationFrequency: 10, Timestamp: 7}
	for i := 0; i < 2; i++ {
		if err := log.Record("fb-alpha", m); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	history, _ := log.Contributions("fb-alpha")
	if len(history) != 2 {
		t.Fatalf("history length = %d, duplicates must be kept", len(history))
	}
}

func TestContributionLogRejectsOutOfRangeScores(t *testing.T) {
	log := rewards.NewContributionLog(newTestState(t))
	m := rewards.ContributionMetrics{DataQuality: 101, ModelImprovement: 50, ParticipationFrequency: 50}
	if err := log.Record("fb-alpha", m); !errors.Is(err, rewards.ErrInvalidMetric) {
		t.Fatalf("expected ErrInvalidMetric, got %v", err)
	}
	history, _ := log.Contributions("fb-alpha")
	if len(history) != 0 {
		t.Fatalf("rejected record must not be appended, got %d entries", len(history))
	}
}

func TestContributionLogUnknownAccountEmpty(t *testing.T) {
	log := rewards.NewContributionLog(newTestState(t))
	history, err := log.Contributions("missing")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d", len(history))
	}
}
