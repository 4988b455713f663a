package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

const appName = "Amal"

// Notifier raises desktop notifications.
type Notifier interface {
	SessionComplete(title string) error
	Reminder(pending int) error
}

// Desktop sends notifications through the OS notification daemon.
type Desktop struct{}

func (Desktop) SessionComplete(title string) error {
	return beeep.Alert(appName, FormatSessionComplete(title), "")
}

func (Desktop) Reminder(pending int) error {
	title, msg := FormatDailyPrompt(pending)
	return beeep.Notify(title, msg, "")
}

// Discard drops every notification.
type Discard struct{}

func (Discard) SessionComplete(string) error { return nil }
func (Discard) Reminder(int) error           { return nil }

func FormatSessionComplete(title string) string {
	if title == "" {
		return "Focus session complete. Take a short break."
	}
	return fmt.Sprintf("Focus session complete: %s. Take a short break.", title)
}

func FormatDailyPrompt(pending int) (string, string) {
	title := "Daily plan reminder"
	msg := fmt.Sprintf("You have %d pending tasks today. Start a focus session?", pending)
	if pending == 1 {
		msg = "You have 1 pending task today. Start a focus session?"
	}
	return title, msg
}
