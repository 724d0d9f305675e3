package conductor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// InteractiveApprove returns an ApprovalFunc that renders a batch's
// operations to out and reads a y/n answer from in. It is the default
// approval gate wired into the command surface when --require-tx-approval
// is set.
func InteractiveApprove(in io.Reader, out io.Writer) ApprovalFunc {
	reader := bufio.NewReader(in)
	return func(batch Batch) (bool, error) {
		renderBatch(out, batch)
		fmt.Fprint(out, "Submit this batch? [y/N] ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// renderBatch writes a human-readable summary of a batch: chain, operation
// count, and each operation's name and Summary line.
func renderBatch(out io.Writer, batch Batch) {
	fmt.Fprintf(out, "\nchain: %s  operations: %d  compute units: %d  signers: %d\n",
		batch.Chain, len(batch.Operations), batch.EstimatedComputeUnits, len(batch.Signers))
	for _, op := range batch.Operations {
		if op.Summary != "" {
			fmt.Fprintf(out, "  - %s: %s\n", op.Name, op.Summary)
		} else {
			fmt.Fprintf(out, "  - %s\n", op.Name)
		}
	}
}

// AutoApprove always approves, for --dry-run-free non-interactive runs
// where --require-tx-approval was not set (the conductor.Submit caller
// skips the gate entirely in that case; this exists for tests and for
// scripted/non-interactive callers that still want the rendering).
func AutoApprove(out io.Writer) ApprovalFunc {
	return func(batch Batch) (bool, error) {
		renderBatch(out, batch)
		return true, nil
	}
}
