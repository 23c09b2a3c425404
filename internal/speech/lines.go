package speech

import (
	"fmt"
	"math/rand"
)

// Spoken lines for moments the interpreter doesn't cover. Kept here so
// the wording lives in one place and the rest of the code stays quiet.

func pick(lines ...string) string {
	return lines[rand.Intn(len(lines))]
}

// LineWelcome is spoken once at startup.
func LineWelcome() string {
	return pick(
		"Hello! I am your cooking assistant. Pick a recipe and let's get started.",
		"Welcome back to the kitchen! What are we cooking today?",
	)
}

// LineStopAck confirms the assistant is shutting down hands-free mode.
func LineStopAck() string {
	return pick(
		"Stopping the assistant. Happy cooking!",
		"Okay, going quiet now. Enjoy your meal!",
	)
}

// LinePauseAck confirms the pause.
func LinePauseAck() string {
	return "Pausing. Say resume when you need me again."
}

// LineResumeAck confirms the resume.
func LineResumeAck() string {
	return pick(
		"Resuming. How can I help?",
		"I'm back. Where were we?",
	)
}

// LineStarting announces a restart from the first step.
func LineStarting(recipeName, firstStep string) string {
	return fmt.Sprintf("Starting %s. Step 1: %s", recipeName, firstStep)
}

// LineSelectFirst is spoken when a voice command needs a bound recipe.
func LineSelectFirst() string {
	return "Please select a recipe first."
}

// LineTimerDone announces timer expiry.
func LineTimerDone() string {
	return "Time is up!"
}
