package quorum

import (
	"testing"

	"kvstore/internal/wire"
)

func TestBegin_RecordsTransaction(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 5)
	got := m.Get(1)
	if got == nil || got.Key != "k" || got.Value != "v" || got.CreatedAt != 5 {
		t.Fatalf("Get(1) = %+v, want a transaction for k=v created at 5", got)
	}
}

func TestGet_UnknownReturnsNil(t *testing.T) {
	m := NewMap()
	if m.Get(99) != nil {
		t.Fatal("Get on unknown id should return nil")
	}
}

func TestCheck_SuccessAtTwoPositiveReplies(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 0)
	m.OnReply(1, true)
	m.OnReply(1, true)

	decisions := m.Check(1)
	if len(decisions) != 1 || decisions[0].Outcome != Success {
		t.Fatalf("decisions = %+v, want one Success", decisions)
	}
	if m.Get(1) != nil {
		t.Fatal("resolved transaction must be removed from the map")
	}
}

func TestCheck_FailureAtTwoNegativeReplies(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 0)
	m.OnReply(1, false)
	m.OnReply(1, false)

	decisions := m.Check(1)
	if len(decisions) != 1 || decisions[0].Outcome != Failure {
		t.Fatalf("decisions = %+v, want one Failure", decisions)
	}
}

func TestCheck_AllThreeRepliesNoMajoritySucceedsOnTwoOfThree(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 0)
	m.OnReply(1, true)
	m.OnReply(1, true)
	m.OnReply(1, false)

	// All three replies are in before the single Check call; successCount
	// is 2, so the successCount >= 2 rule decides Success.
	decisions := m.Check(1)
	if len(decisions) != 1 || decisions[0].Outcome != Success {
		t.Fatalf("decisions = %+v, want Success", decisions)
	}
}

func TestCheck_AllThreeRepliesNoMajorityFails(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 0)
	m.OnReply(1, true)
	m.OnReply(1, false)
	m.OnReply(1, false)

	decisions := m.Check(1)
	if len(decisions) != 1 || decisions[0].Outcome != Failure {
		t.Fatalf("decisions = %+v, want Failure", decisions)
	}
}

func TestCheck_PendingBelowQuorumAndBeforeTimeout(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 0)
	m.OnReply(1, true)

	decisions := m.Check(5)
	if len(decisions) != 0 {
		t.Fatalf("decisions = %+v, want none (still pending)", decisions)
	}
	if m.Get(1) == nil {
		t.Fatal("pending transaction must remain in the map")
	}
}

func TestCheck_TimesOutAfterTTX(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 0)
	m.OnReply(1, true)

	decisions := m.Check(TTX + 1)
	if len(decisions) != 1 || decisions[0].Outcome != Failure {
		t.Fatalf("decisions = %+v, want one timeout Failure", decisions)
	}
}

func TestCheck_NotYetTimedOutAtExactlyTTX(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "k", "v", 0)

	decisions := m.Check(TTX)
	if len(decisions) != 0 {
		t.Fatalf("decisions = %+v, want none at now-createdAt == TTX", decisions)
	}
}

func TestOnReadReply_CapturesValueAndCountsSuccess(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Read, "k", "", 0)
	m.OnReadReply(1, "v1")
	m.OnReadReply(1, "v2")

	decisions := m.Check(1)
	if len(decisions) != 1 || decisions[0].Outcome != Success {
		t.Fatalf("decisions = %+v, want Success", decisions)
	}
	if decisions[0].Transaction.ReadValue != "v2" {
		t.Fatalf("ReadValue = %q, want last-arrival value %q", decisions[0].Transaction.ReadValue, "v2")
	}
}

func TestOnReadReply_EmptyValueCountsAsNegative(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Read, "k", "", 0)
	m.OnReadReply(1, "")
	m.OnReadReply(1, "")

	decisions := m.Check(1)
	if len(decisions) != 1 || decisions[0].Outcome != Failure {
		t.Fatalf("decisions = %+v, want Failure (two not-found replies)", decisions)
	}
}

func TestOnReply_UnknownTransactionIsIgnored(t *testing.T) {
	m := NewMap()
	m.OnReply(42, true)
	if m.Get(42) != nil {
		t.Fatal("OnReply must not create a transaction for an unknown id")
	}
}

func TestLen_TracksPendingCount(t *testing.T) {
	m := NewMap()
	m.Begin(1, wire.Create, "a", "1", 0)
	m.Begin(2, wire.Create, "b", "2", 0)
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	m.OnReply(1, true)
	m.OnReply(1, true)
	m.Check(0)
	if m.Len() != 1 {
		t.Fatalf("Len() = %d after resolving one transaction, want 1", m.Len())
	}
}
