package handlers

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// Reporter prints the human readable run summary.
type Reporter struct {
	Out io.Writer
	// ExplorerURL prefixes the transaction hash; empty prints the bare hash.
	ExplorerURL string
}

// Summary prints the runtime identity and the metadata hash parameters.
func (r Reporter) Summary(d models.RuntimeDescriptor, c *models.MetadataCommitment) {
	fmt.Fprintf(r.Out, "tokenSymbol %s\n", d.TokenSymbol)
	fmt.Fprintf(r.Out, "decimals %d\n", d.Decimals)
	fmt.Fprintf(r.Out, "base58Prefix %d\n", d.AddressPrefix)
	fmt.Fprintf(r.Out, "specName %s\n", d.SpecName)
	fmt.Fprintf(r.Out, "specVersion %d\n", d.SpecVersion)
	if c != nil && c.Required && c.Digest != nil {
		fmt.Fprintf(r.Out, "metadataHashParams { metadataHash: %s, mode: %d }\n", hexutil.Encode(c.Digest[:]), c.Mode)
	} else {
		fmt.Fprintln(r.Out, "metadataHashParams {}")
	}
}

// Outcome prints the final line and returns the process exit code.
func (r Reporter) Outcome(o models.SubmissionOutcome) int {
	if o.IsAccepted() {
		fmt.Fprintf(r.Out, "Tx submitted: %s%s\n", r.ExplorerURL, hexutil.Encode(o.TxHash[:]))
	} else {
		fmt.Fprintf(r.Out, "Failed to submit tx: %v\n", o.Cause)
	}
	return o.ExitCode()
}
