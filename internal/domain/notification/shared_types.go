// internal/domain/notification/shared_types.go
package notification

// Digit is a plate-number partition key, 0 through 9.
type Digit int

// Trigger records what started a notification run.
type Trigger string

const (
	TriggerScheduled Trigger = "SCHEDULED" // daily cron check
	TriggerManual    Trigger = "MANUAL"    // operator supplied the digit
)

// RunStatus is the outcome of a notification run.
type RunStatus string

const (
	RunStatusPending RunStatus = "PENDING" // slot claimed, dispatch not finished
	RunStatusSent    RunStatus = "SENT"
	RunStatusLogged  RunStatus = "LOGGED" // no delivery channel; batch written to the log only
	RunStatusEmpty   RunStatus = "EMPTY"  // no vehicle matched the digit
	RunStatusFailed  RunStatus = "FAILED"
)
