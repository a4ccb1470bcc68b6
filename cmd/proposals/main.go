package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tradeops/trade-governor/internal/journal"
	"github.com/tradeops/trade-governor/internal/proposal"
)

// openJournal opens the audit journal under the persist root. Journaling is
// best-effort from the CLI: any failure downgrades to the no-op recorder.
func openJournal(root string) journal.Recorder {
	path := filepath.Join(root, "governance", "journal.db")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("warning: journal dir: %v", err)
		return journal.Noop{}
	}
	r, err := journal.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("warning: open journal: %v", err)
		return journal.Noop{}
	}
	return r
}

func main() {
	list := flag.Bool("list", false, "list pending proposals")
	approveID := flag.String("approve", "", "approve the proposal with this id")
	rejectID := flag.String("reject", "", "reject the proposal with this id")
	deferID := flag.String("defer", "", "defer (reject) the proposal with this id")
	notes := flag.String("notes", "", "freeform approval notes")
	approvedBy := flag.String("approved-by", "operator", "actor recorded on approval")
	reason := flag.String("reason", "", "rejection reason")
	rejectedBy := flag.String("rejected-by", "operator", "actor recorded on rejection")
	persistPath := flag.String("persist-path", "logs", "storage root")
	flag.Parse()

	if *rejectID == "" {
		*rejectID = *deferID
	}

	mgr := proposal.NewManager(*persistPath)

	switch {
	case *list:
		pending, err := mgr.ListPending()
		if err != nil {
			// Listing never fails the invocation; report and exit clean.
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		if len(pending) == 0 {
			fmt.Println("no pending proposals")
			return
		}
		for _, p := range pending {
			fmt.Printf("%s  env=%s type=%s confidence=%.2f\n    %s\n",
				p.ID, p.Environment, p.Type, p.Confidence, p.Recommendation)
		}

	case *approveID != "":
		if err := mgr.Approve(*approveID, *notes, *approvedBy); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		rec := openJournal(*persistPath)
		defer rec.Close()
		if err := rec.RecordLifecycle(journal.LifecycleEntry{
			Event:      "approved",
			ProposalID: *approveID,
			Actor:      *approvedBy,
			Detail:     *notes,
		}); err != nil {
			log.Printf("warning: journal approval: %v", err)
		}
		fmt.Printf("approved %s\n", *approveID)

	case *rejectID != "":
		if err := mgr.Reject(*rejectID, *reason, *rejectedBy); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		rec := openJournal(*persistPath)
		defer rec.Close()
		if err := rec.RecordLifecycle(journal.LifecycleEntry{
			Event:      "rejected",
			ProposalID: *rejectID,
			Actor:      *rejectedBy,
			Detail:     *reason,
		}); err != nil {
			log.Printf("warning: journal rejection: %v", err)
		}
		fmt.Printf("rejected %s\n", *rejectID)

	default:
		flag.Usage()
		os.Exit(1)
	}
}
