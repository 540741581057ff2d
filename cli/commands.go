package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry   bool   `help:"Show timing telemetry for operations."`
	Verbose     bool   `help:"Log every validation run to stderr." short:"v"`
	Format      string `help:"Report format (text or json)." enum:"text,json" default:"text"`
	Config      string `help:"Validation settings YAML file." type:"existingfile"`
	Policies    string `help:"Policy YAML file (book closure, e-invoicing, HSN catalogue, tax rates)." type:"existingfile"`
	ReasonsFile string `help:"Reason catalogue YAML file extending the built-in reasons." name:"reasons" type:"existingfile"`
}

type Commands struct {
	Globals

	Check     CheckCmd     `cmd:"" help:"Validate saving the note of a fixture bundle."`
	Edit      EditCmd      `cmd:"" help:"Validate editing the old note of a bundle into its note."`
	Cancel    CancelCmd    `cmd:"" help:"Validate cancelling the note of a bundle."`
	Reverse   ReverseCmd   `cmd:"" help:"Validate the note of a bundle as the source of a debit note reversal."`
	Mandate   MandateCmd   `cmd:"" help:"Check the e-invoicing mandate for a persisted note."`
	Reference ReferenceCmd `cmd:"" help:"Check the reference number of the note of a bundle."`
	Schedule  ScheduleCmd  `cmd:"" help:"Validate the payment schedule of a bundle."`
	Submit    SubmitCmd    `cmd:"" help:"Validate submitting the note of a bundle for e-invoicing."`
	Reasons   ReasonsCmd   `cmd:"" help:"List the reason catalogue."`
}
