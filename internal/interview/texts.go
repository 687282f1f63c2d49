package interview

import (
	"fmt"

	"interview-screening-bot/internal/scoring"
)

const (
	textGreeting = "Hello! 👋\n\n" +
		"Please tell us your first name to get started."
	textAdminGreeting = "Hello! 👋 (Admin Test Mode)\n\n" +
		"You can retake this interview as many times as needed for testing.\n\n" +
		"Please tell us your first name to get started."
	textAdminRestartCompleted = "🛠️ Admin Test Mode: Restarting interview for testing.\n\n" +
		"You can retake the interview as many times as needed for testing purposes."
	textAdminRestartInProgress = "🛠️ Admin Test Mode: Restarting interview (previous interview was in progress).\n\n" +
		"You can retake the interview as many times as needed for testing purposes."
	textAdminCompletionNote = "\n\n🛠️ Admin Test Mode: You can retake this interview anytime using /start"

	textAlreadyApproved = "You have already completed the interview and were accepted.\n\n" +
		"Our team will be in touch with onboarding details. " +
		"If you have any questions, please contact an administrator."
	textAlreadyCompletedText = "You have already completed the interview. Please use /start to see your results."
	textNotStarted           = "Please start the bot first by sending /start"
	textAwaitingName         = "You already have an interview in progress.\n\n" +
		"Please tell us your first name to continue."
	textRetryLater           = "Sorry, something went wrong on our side. Please send your last answer again in a moment."
	textRetryStart           = "Sorry, something went wrong on our side. Please try /start again in a moment."
	textPermissionDenied     = "❌ You don't have permission to use this command."
	textStopping             = "🛑 Stopping bot... Please wait."

	feedbackApproved = "Thank you for completing the interview! 🎉\n\n" +
		"We're pleased to let you know that we'd like to move forward with your application. " +
		"You demonstrated strong emotional control, escalation skills, and understanding of monetization strategy.\n\n" +
		"Next steps:\n" +
		"• You'll receive onboarding information within the next 24-48 hours\n" +
		"• Our team will reach out with training details and access credentials\n" +
		"• Please keep an eye on your messages for further instructions\n\n" +
		"Welcome to the team! We're excited to work with you."
	feedbackBorderline = "Thank you for completing the interview! 👋\n\n" +
		"You showed good potential in your responses. While we're not moving forward immediately, " +
		"we'd like to keep your application on file for future opportunities.\n\n" +
		"Your communication style shows promise, but may benefit from additional training in pacing or objection handling.\n\n" +
		"We appreciate your interest and wish you the best in your search."
	feedbackNotEligible = "Thank you for taking the time to complete our interview process.\n\n" +
		"After careful consideration, we've decided to move forward with other candidates at this time. " +
		"This doesn't reflect on you personally, but rather on finding the right fit for our specific needs.\n\n" +
		"We appreciate your interest and wish you the best in your search."
)

func welcomeText(name string) string {
	return fmt.Sprintf("Hello %s 👋\n\n"+
		"We're happy to see you're interested in becoming part of our team.\n\n"+
		"We'll now proceed with the interview phase. This consists of a few short questions designed to understand "+
		"how you communicate, handle different fan situations, and whether your style aligns with what we're looking for.\n\n"+
		"There are no trick questions. Just be yourself and answer naturally.", name)
}

func inProgressText(question, total int) string {
	if question < 1 {
		question = 1
	}
	return fmt.Sprintf("You already have an interview in progress.\n\n"+
		"You're on question %d of %d.\n"+
		"Please continue by answering the current question.", question, total)
}

// Feedback is the candidate-facing message for a decision. It never
// mentions scores or how answers were assessed.
func Feedback(d scoring.Decision) string {
	switch d {
	case scoring.Approved:
		return feedbackApproved
	case scoring.Borderline:
		return feedbackBorderline
	default:
		return feedbackNotEligible
	}
}

func alreadyCompletedText(d scoring.Decision) string {
	if d == scoring.Approved {
		return textAlreadyApproved
	}
	return Feedback(d)
}
