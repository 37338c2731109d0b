package handlers

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// Transfer runs one keep-alive balance transfer: connect, resolve the
// runtime, build the metadata commitment when needed, assemble, sign,
// submit once and report.
type Transfer struct {
	Dial      DialFunc
	NewSigner SignerFactory
	Log       logrus.FieldLogger
	Out       io.Writer
}

// Result is what a run produced. Descriptor and Commitment are set once
// the runtime was resolved.
type Result struct {
	Descriptor *models.RuntimeDescriptor
	Commitment *models.MetadataCommitment
	Outcome    models.SubmissionOutcome
	ExitCode   int
}

func NewTransfer(log logrus.FieldLogger, out io.Writer) *Transfer {
	return &Transfer{
		Dial:      Dial,
		NewSigner: NewKeyringSigner,
		Log:       log,
		Out:       out,
	}
}

// Run executes the pipeline. Any failure ends the run: the returned error is
// the outcome's cause and the result carries exit code 1.
func (t *Transfer) Run(ctx context.Context, cfg Config) (*Result, error) {
	res := &Result{}
	err := t.run(ctx, cfg, res)
	if err != nil {
		res.Outcome = models.Rejected(err)
	}
	res.ExitCode = t.reporter(cfg).Outcome(res.Outcome)
	return res, err
}

func (t *Transfer) reporter(cfg Config) Reporter {
	out := t.Out
	if out == nil {
		out = io.Discard
	}
	return Reporter{Out: out, ExplorerURL: cfg.ExplorerURL}
}

func (t *Transfer) run(ctx context.Context, cfg Config, res *Result) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := t.Log.WithField("endpoint", cfg.Endpoint)

	log.Info("connecting")
	dialCtx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	conn, err := t.Dial(dialCtx, cfg.Endpoint)
	cancel()
	if err != nil {
		return models.Classify(models.ErrConnection, cfg.Endpoint, err)
	}
	defer conn.Close()

	resolution, err := ResolveDescriptor(ctx, conn, log)
	if err != nil {
		return err
	}
	d := resolution.Descriptor
	res.Descriptor = &d

	commitment, err := BuildCommitment(resolution, log)
	if err != nil {
		return err
	}
	res.Commitment = commitment
	t.reporter(cfg).Summary(d, commitment)

	signer, err := t.NewSigner(cfg.Mnemonic, d.AddressPrefix)
	if err != nil {
		return models.Classify(models.ErrSigning, "MNEMONIC", err)
	}
	sender, err := signer.Address()
	if err != nil {
		return models.NewError(models.ErrSigning, "address", err)
	}

	intent, err := t.intent(cfg, d, sender)
	if err != nil {
		return err
	}
	tip, err := cfg.TipValue()
	if err != nil {
		return models.NewError(models.ErrConfig, "TIP", err)
	}

	log.WithFields(logrus.Fields{
		"from":   sender,
		"to":     intent.Destination,
		"amount": models.FromBaseUnits(intent.Amount, d.Decimals) + " " + d.TokenSymbol,
	}).Info("preparing transfer")

	asm, err := Assemble(ctx, conn, resolution, commitment, intent, AssembleOptions{
		SenderAddress: sender,
		Tip:           tip,
		EraPeriod:     cfg.EraPeriod,
	}, log)
	if err != nil {
		return err
	}

	submitter := &Submitter{Transport: conn, Log: log, WithSignedTransaction: cfg.WithSignedTransaction}
	res.Outcome = submitter.Submit(ctx, asm, signer, d.SignedExtensionIdentifiers)
	return res.Outcome.Cause
}

// intent scales the configured amount; the destination defaults to the
// sender itself.
func (t *Transfer) intent(cfg Config, d models.RuntimeDescriptor, sender string) (models.TransferIntent, error) {
	amount, err := models.ToBaseUnits(cfg.Amount, d.Decimals)
	if err != nil {
		return models.TransferIntent{}, models.NewError(models.ErrConfig, "AMOUNT", err)
	}
	dest := cfg.Destination
	if dest == "" {
		dest = sender
	}
	return models.TransferIntent{Destination: dest, Amount: amount}, nil
}
