// services/notify.go
package services

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TokenSymbol is the ticker shown in user-facing messages.
const TokenSymbol = "TPT"

// Notice is the toast shown to the user after an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

var printer = message.NewPrinter(language.English)

func ClaimedNotice(amount, total int64) Notice {
	return Notice{
		Title:       "Tokens Claimed!",
		Description: printer.Sprintf("You have successfully claimed %d %s tokens. Total claimed: %d %s.", amount, TokenSymbol, total, TokenSymbol),
		Variant:     "default",
	}
}

func TaskCompletedNotice(title string, credited int64) Notice {
	if credited == 0 {
		return Notice{
			Title:       "Task Completed!",
			Description: printer.Sprintf("%s is done again. Its reward was already credited.", title),
			Variant:     "default",
		}
	}
	return Notice{
		Title:       "Task Completed!",
		Description: printer.Sprintf("You earned %d %s tokens.", credited, TokenSymbol),
		Variant:     "default",
	}
}

func TasksResetNotice(count int64) Notice {
	return Notice{
		Title:       "Tasks Reset",
		Description: printer.Sprintf("All tasks have been reset (%d cleared).", count),
		Variant:     "default",
	}
}

func VerifiedNotice() Notice {
	return Notice{
		Title:       "Verification Successful",
		Description: "Your World ID has been verified successfully!",
		Variant:     "default",
	}
}

// FailureNotice turns an error into a distinct, human-readable message.
func FailureNotice(err error) Notice {
	n := Notice{Variant: "destructive"}

	var claimed *AlreadyClaimedError
	var verr *VerificationError
	var serr *StoreError
	switch {
	case errors.As(err, &claimed):
		n.Title = "Already Claimed"
		n.Description = printer.Sprintf("Your next claim is available in %s.", FormatCountdown(claimed.Remaining))
	case errors.Is(err, ErrAlreadyClaimed):
		n.Title = "Already Claimed"
		n.Description = "You have already claimed within the last 24 hours."
	case errors.Is(err, ErrNotAuthenticated):
		n.Title = "Not Signed In"
		n.Description = "Verify with World ID to continue."
	case errors.Is(err, ErrAlreadyCompleted):
		n.Title = "Task Already Completed"
		n.Description = "This task has already been completed."
	case errors.Is(err, ErrUnknownTask):
		n.Title = "Unknown Task"
		n.Description = "That task does not exist."
	case errors.As(err, &verr):
		n.Title = "Verification Failed"
		n.Description = "Could not verify with World ID"
		if verr.Detail != "" {
			n.Description += ": " + verr.Detail
		}
	case errors.As(err, &serr):
		n.Title = "Something Went Wrong"
		n.Description = "We could not save your progress. Nothing was changed, please try again."
	default:
		n.Title = "Something Went Wrong"
		n.Description = "Please try again in a moment."
	}
	return n
}

// FormatCountdown renders a duration as HH:MM:SS, rounding down.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
