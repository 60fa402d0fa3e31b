package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/dharani043/result-bot/internal/monitor"
)

// User-facing reply texts. Rendering is cosmetic; only the verbs and
// their preconditions matter to the engine.

const (
	msgResultOut    = "🎓 RESULT OUT!"
	msgResultUpdate = "🎓 RESULT UPDATE"

	msgPortalDegraded = "⚠️ Result portal database is under maintenance.\nBot will retry."

	msgNotAuthorized = "⛔ Not authorized"
	msgAddUsage      = "❌ Usage: /add ROLL DD/MM/YYYY"
	msgRemoveUsage   = "❌ Usage: /remove ROLL"
	msgNoStudents    = "📭 No students added"
	msgFetching      = "⚡ Fetching results now..."
	msgFetchFailed   = "❌ Fetch failed. Try again later."
	msgFetchStopped  = "⛔ Fetch operation stopped by admin"
	msgStopping      = "⛔ Stopping all fetch operations..."
	msgRegistryBusy  = "❌ Could not update the list right now. Try again later."
)

func msgWelcome(chatID int64) string {
	return fmt.Sprintf(
		"🎓 Welcome to Result Bot!\n\n"+
			"📋 Available Commands:\n"+
			"• /add ROLL DOB - Add student (DD/MM/YYYY)\n"+
			"• /remove ROLL - Remove student\n"+
			"• /list - Show your students\n"+
			"• /status - Bot status\n"+
			"• /health - Portal health check\n"+
			"• /help - Show this help\n\n"+
			"📝 Example:\n"+
			"/add 727723EUEC001 15/08/2005\n\n"+
			"🔔 You'll get notified when results are available!\n\n"+
			"💬 Your Chat ID: %d",
		chatID,
	)
}

const msgHelp = "🤖 Result Bot Help\n\n" +
	"📋 Commands:\n" +
	"• /start - Welcome message\n" +
	"• /add ROLL DOB - Add student for monitoring\n" +
	"  Format: /add 727723EUEC001 15/08/2005\n\n" +
	"• /remove ROLL - Remove student\n" +
	"  Format: /remove 727723EUEC001\n\n" +
	"• /list - Show all your added students\n" +
	"• /status - Show bot status & your student count\n" +
	"• /health - Check result portal status\n" +
	"• /help - Show this detailed help\n\n" +
	"⚡ Admin Commands:\n" +
	"• /fetchnow - Force check all results\n" +
	"• /stop - Stop ongoing fetch operations\n\n" +
	"🔔 How it works:\n" +
	"1. Add students using /add command\n" +
	"2. Bot checks results periodically\n" +
	"3. You get notified when results are out"

func msgAdding(roll string) string {
	return fmt.Sprintf("⏳ Adding %s...", roll)
}

func msgAdded(roll string) string {
	return fmt.Sprintf("✅ %s added successfully", roll)
}

func msgAlreadyAdded(roll string) string {
	return fmt.Sprintf("⚠️ %s already added", roll)
}

func msgRemoved(roll string) string {
	return fmt.Sprintf("🗑️ %s removed successfully", roll)
}

func msgNotFound(roll string) string {
	return fmt.Sprintf("⚠️ %s not found", roll)
}

func msgStudentList(rolls []string) string {
	var b strings.Builder
	b.WriteString("📋 Students:\n")
	for _, roll := range rolls {
		b.WriteString("- ")
		b.WriteString(roll)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func msgStatus(count int, pollInterval time.Duration) string {
	return fmt.Sprintf(
		"📊 Bot Status\n\n👥 Students: %d\n⏱ Poll interval: %ds\n🟢 Running",
		count,
		int(pollInterval.Seconds()),
	)
}

func msgPushed(count int) string {
	return fmt.Sprintf("✅ Results pushed to %d students", count)
}

func msgHealthReport(h monitor.Health) string {
	switch h {
	case monitor.HealthOK:
		return "🩺 Portal Health\n\n🌐 Portal: UP\n🗄 Database: UP"
	case monitor.HealthDBDown:
		return "🩺 Portal Health\n\n🌐 Portal: UP\n🗄 Database: UNDER MAINTENANCE"
	case monitor.HealthNoResult:
		return "🩺 Portal Health\n\n🌐 Portal: UP\n🗄 Database: UP\n📭 No results published yet"
	case monitor.HealthNoSubscribers:
		return "🩺 Portal Health\n\n❓ No students to probe with. Add one with /add first."
	default:
		return "🩺 Portal Health\n\n🌐 Portal: DOWN"
	}
}
