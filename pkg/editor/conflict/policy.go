package conflict

import (
	"time"

	"trace-journal-be/pkg/editor/ledger"
)

// Outcome is what the resolution rules decided to do with one incoming
// revision.
type Outcome int

const (
	// OutcomeIgnoredSaving drops the revision because a save round trip is in
	// flight; the save response must not race a sync push.
	OutcomeIgnoredSaving Outcome = iota
	// OutcomeIgnoredStale drops a revision that is not newer than what the
	// session already knows.
	OutcomeIgnoredStale
	// OutcomeConfirmedOwn acknowledges the session's own save echoing back;
	// the ledger advanced, content stays as is.
	OutcomeConfirmedOwn
	// OutcomeKeptLocal preserves unsaved local edits over a newer external
	// revision and tells the user a merge is coming.
	OutcomeKeptLocal
	// OutcomeAdopted replaces a clean working copy with the external revision.
	OutcomeAdopted
	// OutcomeAdoptedOverwrote is an adoption right after a local save: the
	// other origin probably clobbered it, so the user gets a blocking warning.
	OutcomeAdoptedOverwrote
	// OutcomeIgnoredMismatch drops a delivery for an entry the session is not
	// hosting. Decide never returns it; the session's identity gate does,
	// before any rule runs.
	OutcomeIgnoredMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnoredSaving:
		return "ignored_saving"
	case OutcomeIgnoredStale:
		return "ignored_stale"
	case OutcomeConfirmedOwn:
		return "confirmed_own"
	case OutcomeKeptLocal:
		return "kept_local"
	case OutcomeAdopted:
		return "adopted"
	case OutcomeAdoptedOverwrote:
		return "adopted_overwrote"
	case OutcomeIgnoredMismatch:
		return "ignored_mismatch"
	default:
		return "unknown"
	}
}

// Adopts reports whether the outcome replaces the working copy.
func (o Outcome) Adopts() bool {
	return o == OutcomeAdopted || o == OutcomeAdoptedOverwrote
}

// RecencySource answers "did a local save just happen" exactly once; a true
// answer consumes the underlying stamp. Implemented by the version ledger.
type RecencySource interface {
	ConsumeRecentSave(window time.Duration) bool
}

// Input bundles everything the decision needs. Recency is only consulted —
// and consumed — on the clean-adoption path.
type Input struct {
	SaveInFlight    bool
	Classification  ledger.Classification
	Dirty           bool
	AttachmentDelta bool
	Recency         RecencySource
	Window          time.Duration
}

// Decide runs the resolution rules in strict priority order:
//
//  1. a save in flight wins over everything, the revision is dropped
//  2. not newer: drop
//  3. newer but self-originated: nothing to do, we already have the content
//  4. newer and external: unsaved local edits (or a drifted attachment
//     count) are kept and the user is notified; a clean copy adopts the
//     revision, with a blocking warning instead of a notice when a local
//     save landed moments ago.
//
// Silently overwriting unsaved input is the one unacceptable failure mode;
// when preservation and freshness conflict, preservation wins.
func Decide(in Input) Outcome {
	if in.SaveInFlight {
		return OutcomeIgnoredSaving
	}
	if !in.Classification.IsNewer {
		return OutcomeIgnoredStale
	}
	if !in.Classification.IsExternal {
		return OutcomeConfirmedOwn
	}
	if in.Dirty || in.AttachmentDelta {
		return OutcomeKeptLocal
	}

	window := in.Window
	if window <= 0 {
		window = ledger.DefaultOverwriteWindow
	}
	if in.Recency != nil && in.Recency.ConsumeRecentSave(window) {
		return OutcomeAdoptedOverwrote
	}
	return OutcomeAdopted
}
