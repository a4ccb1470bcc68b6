package proposal

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Record is the immutable proposal body written by the external generator.
type Record struct {
	Type        string   `json:"type"`
	Environment string   `json:"environment"`
	Symbols     []string `json:"symbols"`
}

// Synthesis is the external recommendation attached to a proposal at
// creation time.
type Synthesis struct {
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"` // in [0,1]
}

// Pending is one listing entry for a proposal awaiting a decision.
type Pending struct {
	ID             string
	Environment    string
	Type           string
	Recommendation string
	Confidence     float64
}

// Approval is the immutable record terminating a proposal as approved. It
// denormalizes the proposal snapshot so later audit never re-reads the
// original files.
type Approval struct {
	DecisionID     string    `json:"decision_id"`
	ApprovedAt     time.Time `json:"approved_at"`
	ApprovedBy     string    `json:"approved_by"`
	Notes          string    `json:"notes"`
	ProposalType   string    `json:"proposal_type"`
	Symbols        []string  `json:"symbols"`
	Recommendation string    `json:"recommendation"`
	Confidence     float64   `json:"confidence"`
}

// Rejection is the immutable record terminating a proposal as rejected.
type Rejection struct {
	DecisionID   string    `json:"decision_id"`
	RejectedAt   time.Time `json:"rejected_at"`
	RejectedBy   string    `json:"rejected_by"`
	Reason       string    `json:"reason"`
	ProposalType string    `json:"proposal_type"`
	Symbols      []string  `json:"symbols"`
}

const (
	proposalFile  = "proposal.json"
	synthesisFile = "synthesis.json"
	approvalFile  = "approval.json"
	rejectionFile = "rejection.json"
)

// Manager owns the pending → approved/rejected transition for proposals under
// one root. It is the sole writer of decision records; approval and rejection
// files are created exclusively (fail-if-exists), so racing callers serialize
// on the filesystem and the loser observes ErrAlreadyDecided.
type Manager struct {
	root string // proposals live under root/proposals/<id>/
}

// NewManager creates a Manager over the given persist root.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

func (m *Manager) proposalsDir() string {
	return filepath.Join(m.root, "proposals")
}

func (m *Manager) dir(id string) string {
	return filepath.Join(m.proposalsDir(), id)
}

// ListPending scans all proposal directories and returns those without an
// approval record, sorted by ID. Directories missing either required file, or
// with unparsable content, are skipped: a half-written proposal must not
// break listing.
func (m *Manager) ListPending() ([]Pending, error) {
	entries, err := os.ReadDir(m.proposalsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read proposals root: %v", ErrStorageUnavailable, err)
	}

	var out []Pending
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id := e.Name()
		if _, err := os.Stat(filepath.Join(m.dir(id), approvalFile)); err == nil {
			continue
		}
		rec, syn, err := m.readPair(id)
		if err != nil {
			log.Printf("proposal %s: skipping unreadable entry: %v", id, err)
			continue
		}
		out = append(out, Pending{
			ID:             id,
			Environment:    rec.Environment,
			Type:           rec.Type,
			Recommendation: syn.Recommendation,
			Confidence:     syn.Confidence,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Approve transitions the proposal to approved, writing an immutable approval
// record. A pre-existing rejection does not block approval; only a
// pre-existing approval does.
func (m *Manager) Approve(id, notes, approvedBy string) error {
	if err := m.exists(id); err != nil {
		return err
	}
	rec, syn, err := m.readPair(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	approval := Approval{
		DecisionID:     uuid.NewString(),
		ApprovedAt:     time.Now().UTC(),
		ApprovedBy:     approvedBy,
		Notes:          notes,
		ProposalType:   rec.Type,
		Symbols:        rec.Symbols,
		Recommendation: syn.Recommendation,
		Confidence:     syn.Confidence,
	}
	return m.writeDecision(id, approvalFile, approval)
}

// Reject transitions the proposal to rejected, writing an immutable rejection
// record. Any existing decision record, approval or rejection, blocks it.
func (m *Manager) Reject(id, reason, rejectedBy string) error {
	if err := m.exists(id); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(m.dir(id), approvalFile)); err == nil {
		return fmt.Errorf("%w: approval record exists for %s", ErrAlreadyDecided, id)
	}
	rec, _, err := m.readPair(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	rejection := Rejection{
		DecisionID:   uuid.NewString(),
		RejectedAt:   time.Now().UTC(),
		RejectedBy:   rejectedBy,
		Reason:       reason,
		ProposalType: rec.Type,
		Symbols:      rec.Symbols,
	}
	return m.writeDecision(id, rejectionFile, rejection)
}

// ReadApproval loads an existing approval record, mainly for audit surfaces
// and tests.
func (m *Manager) ReadApproval(id string) (*Approval, error) {
	data, err := os.ReadFile(filepath.Join(m.dir(id), approvalFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	var a Approval
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: approval for %s: %v", ErrMalformedRecord, id, err)
	}
	return &a, nil
}

func (m *Manager) exists(id string) error {
	info, err := os.Stat(m.dir(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (m *Manager) readPair(id string) (Record, Synthesis, error) {
	var rec Record
	var syn Synthesis
	data, err := os.ReadFile(filepath.Join(m.dir(id), proposalFile))
	if err != nil {
		return rec, syn, fmt.Errorf("read %s: %w", proposalFile, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, syn, fmt.Errorf("parse %s: %w", proposalFile, err)
	}
	data, err = os.ReadFile(filepath.Join(m.dir(id), synthesisFile))
	if err != nil {
		return rec, syn, fmt.Errorf("read %s: %w", synthesisFile, err)
	}
	if err := json.Unmarshal(data, &syn); err != nil {
		return rec, syn, fmt.Errorf("parse %s: %w", synthesisFile, err)
	}
	return rec, syn, nil
}

// writeDecision creates the decision file exclusively. The O_EXCL create is
// the commit point: two racing transitions cannot both win, and the loser
// gets ErrAlreadyDecided without touching the winner's record.
func (m *Manager) writeDecision(id, file string, v any) error {
	path := filepath.Join(m.dir(id), file)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s exists for %s", ErrAlreadyDecided, file, id)
		}
		return fmt.Errorf("%w: create %s: %v", ErrStorageUnavailable, file, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", file, err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, file, err)
	}
	return f.Close()
}
