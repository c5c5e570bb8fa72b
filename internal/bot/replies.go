package bot

import (
	"fmt"
	"strings"

	"github.com/danhigham/mailstr/internal/domain"
	"github.com/danhigham/mailstr/internal/session"
)

// Menu labels are opaque strings: the platform echoes the tapped button
// back as message text, so handlers must match them exactly.
const (
	labelEnterPassword = "🔑 Enter Password"
	labelConfiguration = "⚙️ Configuration"
	labelInputEmails   = "📧 Input Emails"
	labelClearMessages = "🧹 Clear Messages"
	labelReset         = "🔄 Reset"
	labelCancel        = "❌ Cancel"
	labelDone          = "✅ Done"
	labelBackToMenu    = "🔙 Back to Menu"
	labelCopyAgain     = "📋 Copy Again"
)

const (
	passwordPrompt = "🔒 Access Required\n\n" +
		"Please enter the password to access the CyberMail Matrix:"

	accessGranted     = "✅ Access granted! Welcome to CyberMail Matrix."
	incorrectPassword = "❌ Incorrect password. Please try again:"

	menuHeader = "⚡ CyberMail Matrix\n\nSelect an option:"

	emailPrompt = "📧 Input Emails\n\n" +
		"Paste your text with emails. I'll automatically extract valid email addresses!\n\n" +
		"The quantity will be auto-detected from the number of emails found."

	noEmailsFound = "❌ No valid email addresses found in the input! " +
		"Please check your input and try again."

	noCachedEmails = "❌ No previous emails found. Please process emails again."

	configDone = "✅ Configuration updated!"
	resetDone  = "✅ Configuration reset to default values!"

	invalidSetting = "❌ Invalid setting name. Please try again."

	invalidTimerValue = "❌ auto_clear_timer must be a non-negative number of seconds."

	invalidFormat = "❌ Invalid format. Please use:\n\n" +
		"1. Click a setting button, then type the new value\n" +
		"2. Use format: `setting_name=new_value`\n" +
		"3. Or click 'Done' to finish"

	cancelled = "👋 Operation cancelled. Type /start to begin again."

	apology = "⚠️ Something went wrong. Returning to the main menu."

	helpText = "🤖 CyberMail Matrix Bot Help\n\n" +
		"This bot helps you extract and format email addresses from text.\n\n" +
		"Commands:\n" +
		"/start - Start the bot and authenticate\n" +
		"/help - Show this help message\n\n" +
		"Features:\n" +
		"• Password protection\n" +
		"• Automatic email extraction from any text\n" +
		"• Configuration settings\n" +
		"• Password auto-detection\n" +
		"• Clean, formatted output\n" +
		"• Message clearing for privacy\n" +
		"• Auto-clear timer (configurable)\n\n" +
		"Privacy Features:\n" +
		"• Clear Messages: Manually remove conversation history\n" +
		"• Auto Clear: Messages automatically deleted after timer expires\n\n" +
		"Just send /start to begin!"
)

func passwordKeyboard() *domain.Keyboard {
	return &domain.Keyboard{
		Rows:        [][]string{{labelEnterPassword}},
		Placeholder: "Type your password here",
		OneTime:     true,
	}
}

func mainMenuKeyboard() *domain.Keyboard {
	return &domain.Keyboard{
		Rows: [][]string{
			{labelConfiguration},
			{labelInputEmails},
			{labelClearMessages, labelReset},
			{labelCancel},
		},
		Placeholder: "Select an option",
		OneTime:     true,
	}
}

func configKeyboard() *domain.Keyboard {
	fields := session.ConfigFields
	rows := make([][]string, 0, len(fields)/2+1)
	for i := 0; i+1 < len(fields); i += 2 {
		rows = append(rows, []string{fields[i], fields[i+1]})
	}
	rows = append(rows, []string{labelDone, labelBackToMenu})
	return &domain.Keyboard{
		Rows:        rows,
		Placeholder: "Type setting=value or select Done",
		OneTime:     true,
	}
}

func emailKeyboard() *domain.Keyboard {
	return &domain.Keyboard{
		Rows:        [][]string{{labelBackToMenu}},
		Placeholder: "Paste your text with emails here",
		OneTime:     true,
	}
}

func outputKeyboard() *domain.Keyboard {
	return &domain.Keyboard{
		Rows: [][]string{
			{labelClearMessages, labelCopyAgain},
			{labelBackToMenu},
		},
		Placeholder: "Choose an option",
		OneTime:     true,
	}
}

func removeKeyboard() *domain.Keyboard {
	return &domain.Keyboard{Remove: true}
}

func configSummary(cfg domain.Config) string {
	return fmt.Sprintf(
		"🔑 Prime: %s\n"+
			"⏰ Validity: %s\n"+
			"💳 Bin/UPI: %s\n"+
			"🔐 Prime Pass: %s\n"+
			"📧 Mail Pass: %s\n"+
			"⏱️ Auto Clear Timer: %d seconds",
		cfg.Prime, cfg.Validity, cfg.BinType, cfg.PrimePass, cfg.MailPass, cfg.AutoClearTimer,
	)
}

func configView(cfg domain.Config) string {
	return "⚙️ Current Configuration:\n\n" +
		configSummary(cfg) + "\n\n" +
		"To change a setting:\n" +
		"1. Click the setting button below\n" +
		"2. Type the new value\n" +
		"3. Or use format: `setting_name=new_value`\n\n" +
		"Auto Clear Timer: messages are automatically cleared after this many " +
		"seconds for privacy. Set to 0 to disable auto-clear.\n\n" +
		"Click 'Done' when finished or 'Back to Menu' to return."
}

func updatedConfigView(cfg domain.Config) string {
	return "📋 Updated Configuration:\n\n" + configSummary(cfg)
}

func fieldPrompt(field, current string) string {
	return fmt.Sprintf("📝 Updating %s\n\nCurrent value: `%s`\n\nPlease enter the new value:", field, current)
}

func outputView(out string, count, autoClearSeconds int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d valid emails:\n\n```\n%s\n```\n\n", count, out)
	b.WriteString(outputInstructions)
	if autoClearSeconds > 0 {
		fmt.Fprintf(&b, "\n\n⏱️ Auto-clear in %d minutes for privacy", autoClearSeconds/60)
	}
	return b.String()
}

const outputInstructions = "📋 Copy the output above, then use the buttons below:\n\n" +
	"🧹 Clear Messages - Removes all conversation history\n" +
	"📋 Copy Again - Shows the output again\n" +
	"🔙 Back to Menu - Return to main menu"

func copyAgainView(out string) string {
	return "📋 Output again for copying:\n\n```\n" + out + "\n```\n\n" + outputInstructions
}
