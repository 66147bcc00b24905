// Package actor carries the acting identity into service calls.
package actor

import "fmt"

// Actor is whoever performs an operation: an operator, a bot user, or the system.
type Actor struct {
	ID   int64
	Name string
}

// System is used for cron-triggered work and anonymous requests.
var System = Actor{ID: 0, Name: "system"}

func (a Actor) IsSystem() bool { return a.ID == 0 }

func (a Actor) String() string {
	if a.Name == "" {
		return fmt.Sprintf("actor#%d", a.ID)
	}
	return fmt.Sprintf("%s#%d", a.Name, a.ID)
}
