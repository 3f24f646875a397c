package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lalith-99/autoapprove/internal/models"
)

const (
	promotionMessage = "🌟 All join requests are auto-approved! Just click the channel links below."

	noUsername        = "No username"
	anonymousUsername = "Anonymous"
	defaultFirstName  = "User"

	adminOnlyText = "⛔ Admin only!"

	// notifyTimeLayout is used in admin notifications, logTimeLayout when
	// listing stored timestamps.
	notifyTimeLayout = "02-01-2006 15:04"
	logTimeLayout    = "2006-01-02T15:04"

	// Listing cutoffs for the admin commands.
	recentLimit = 20
	usersLimit  = 50
)

const helpText = `
📖 How to Use:

🔐 JOIN CHANNELS:
1️⃣ Click on any channel link
2️⃣ Request to join
3️⃣ Get approved INSTANTLY by bot
4️⃣ No waiting needed!

📥 REQUEST CONTENT:
1️⃣ Click "Request Content"
2️⃣ Send your request
3️⃣ Posted to channels automatically

✅ All join requests are approved automatically!
⚡ Instant access to all channels!

💡 Note: Make sure you've started the bot to receive notifications.
`

const requestPromptText = "📝 Send Your Content Request:\n\n" +
	"Type what you want:\n" +
	"• Movie name\n" +
	"• Series name\n" +
	"• Any content\n\n" +
	"Your request will be posted to channels!"

const broadcastUsageText = "📢 Broadcast to All Users\n\n" +
	"Usage: /broadcast <message>\n\n" +
	"Example:\n" +
	"/broadcast Welcome to our channel!"

const broadcastStartedText = "📤 Broadcasting..."

const noChannelsUserText = "📢 No channels connected yet!\n\nAdd the bot as admin in your channels."

const noChannelsAdminText = "📢 No channels connected!\n\n" +
	"Add the bot as admin in your private channels.\n" +
	"Bot will auto-detect channels when it receives join requests."

const noApprovalsText = "📭 No approvals yet!"

const noRequestsText = "📭 No content requests!"

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// channelLink builds a t.me deep link: the public username when there is
// one, otherwise the private c/<id> form with the -100 channel prefix
// stripped.
func channelLink(username string, id int64) string {
	if username != "" && username != models.PrivateUsername {
		return "https://t.me/" + username
	}
	raw := strconv.FormatInt(id, 10)
	if trimmed := strings.TrimPrefix(raw, "-100"); trimmed != raw {
		return "https://t.me/c/" + trimmed
	}
	return "https://t.me/c/" + strings.TrimPrefix(raw, "-")
}

func welcomeApprovedText(channelTitle, firstName string) string {
	return fmt.Sprintf(`
✅ Welcome! You've been approved!

🎉 Channel: %s
👤 Welcome %s!

Your join request was automatically approved by our bot. Enjoy the content! 🚀

%s
`, channelTitle, firstName, promotionMessage)
}

func adminJoinNotificationText(u User, channelTitle string, at time.Time, approvals int) string {
	return fmt.Sprintf(`
✅ Auto-Approved Join Request

👤 User: %s (@%s)
🆔 User ID: %d
📢 Channel: %s
⏰ Time: %s

Total approvals in this channel: %d
`, u.FirstName, orDefault(u.Username, noUsername), u.ID, channelTitle, at.Format(notifyTimeLayout), approvals)
}

func startText(username string) string {
	return fmt.Sprintf(`
🤖 Welcome to Auto-Approve Bot!

Hi @%s! 👋

✨ Features:
• ✅ AUTO-APPROVE join requests instantly
• 📥 Request content from channels
• 📊 Track all members
• 📢 Broadcast to users

🔐 How it works:
1. Join any of our private channels
2. Your request is APPROVED automatically
3. Enjoy instant access!

%s

Click below to get started! 👇
`, orDefault(username, noUsername), promotionMessage)
}

func startMenu(hasChannels bool) [][]Button {
	rows := [][]Button{
		{{Text: "📥 Request Content", Data: ButtonRequest}},
	}
	if hasChannels {
		rows = append(rows, []Button{{Text: "📢 Our Channels", Data: ButtonChannels}})
	}
	return append(rows, []Button{{Text: "ℹ️ How it Works", Data: ButtonHelp}})
}

func channelListText(channels []models.ChannelInfo) (string, [][]Button) {
	var b strings.Builder
	fmt.Fprintf(&b, "📢 OUR CHANNELS (%d):\n\n", len(channels))
	b.WriteString("Click to join any channel - Auto-approved! ✅\n\n")

	var buttons [][]Button
	for _, ch := range channels {
		fmt.Fprintf(&b, "🔹 %s\n", ch.Title)
		fmt.Fprintf(&b, "   Members approved: %d\n\n", ch.JoinRequests)
		if ch.IsPublic() {
			buttons = append(buttons, []Button{{Text: "📢 " + ch.Title, URL: channelLink(ch.Username, ch.ID)}})
		}
	}
	return b.String(), buttons
}

func requestSubmittedText(req models.ContentRequest) string {
	return fmt.Sprintf("✅ Request Submitted!\n\n"+
		"🆔 Request ID: #%d\n"+
		"📝 Request: %s\n\n"+
		"Admin will process your request soon!", req.ID, req.Request)
}

func adminRequestNotificationText(req models.ContentRequest, at time.Time) string {
	return fmt.Sprintf(`
📥 New Content Request

🆔 ID: #%d
👤 User: %s (@%s)
💬 User ID: %d
📝 Request: %s
⏰ %s
`, req.ID, req.FirstName, req.Username, req.UserID, req.Request, at.Format(notifyTimeLayout))
}

func broadcastSummaryText(res BroadcastResult) string {
	return fmt.Sprintf("📊 Broadcast Complete!\n\n"+
		"✅ Sent: %d\n"+
		"❌ Failed: %d\n"+
		"👥 Total: %d", res.Sent, res.Failed, res.Total)
}

func statsText(st models.Stats, at time.Time) string {
	var channels strings.Builder
	for _, ch := range st.Channels {
		fmt.Fprintf(&channels, "📢 %s\n", ch.Title)
		fmt.Fprintf(&channels, "   Approvals: %d\n\n", ch.JoinRequests)
	}
	channelStats := channels.String()
	if channelStats == "" {
		channelStats = "   No channels yet"
	}

	return fmt.Sprintf(`
📊 BOT STATISTICS

👥 USERS:
   Bot Users: %d

✅ JOIN REQUESTS:
   Total Auto-Approved: %d

📥 CONTENT REQUESTS:
   Total Requests: %d

📢 CHANNELS (%d):
%s

⏰ Updated: %s

🤖 Status: Active ✅
Auto-Approve: Enabled ✅
`, st.Users, st.Approvals, st.ContentRequests, len(st.Channels), channelStats, at.Format(notifyTimeLayout))
}

func recentApprovalsText(recs []models.JoinRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ RECENT AUTO-APPROVALS (Last %d):\n\n", recentLimit)
	for _, r := range recs {
		fmt.Fprintf(&b, "👤 %s (@%s)\n", r.FirstName, orDefault(r.Username, noUsername))
		fmt.Fprintf(&b, "📢 %s\n", r.ChannelName)
		fmt.Fprintf(&b, "⏰ %s\n\n", r.Timestamp.Format(logTimeLayout))
	}
	return b.String()
}

func recentRequestsText(reqs []models.ContentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📥 CONTENT REQUESTS (Last %d):\n\n", recentLimit)
	for _, r := range reqs {
		fmt.Fprintf(&b, "🆔 #%d | @%s\n", r.ID, r.Username)
		fmt.Fprintf(&b, "📝 %s\n", r.Request)
		fmt.Fprintf(&b, "⏰ %s\n\n", r.Timestamp.Format(logTimeLayout))
	}
	return b.String()
}

func adminChannelsText(channels []models.ChannelInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📢 CONNECTED CHANNELS (%d):\n\n", len(channels))
	for _, ch := range channels {
		fmt.Fprintf(&b, "🔹 %s\n", ch.Title)
		fmt.Fprintf(&b, "   Type: %s\n", ch.Type)
		fmt.Fprintf(&b, "   Username: @%s\n", orDefault(ch.Username, models.PrivateUsername))
		fmt.Fprintf(&b, "   ID: %d\n", ch.ID)
		fmt.Fprintf(&b, "   Approvals: %d\n\n", ch.JoinRequests)
	}
	return b.String()
}

func usersText(ids []int64, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 Total Users: %d\n\n", total)
	for i, id := range ids {
		fmt.Fprintf(&b, "%d. %d\n", i+1, id)
	}
	if total > len(ids) {
		fmt.Fprintf(&b, "\n... and %d more", total-len(ids))
	}
	return b.String()
}

func adminPanelText(st models.Stats) string {
	return fmt.Sprintf(`
🔐 ADMIN PANEL

📊 STATISTICS:
/stats - Bot statistics
/approvals - Recent approvals
/requests - Content requests
/channels - Connected channels
/users - User list

📢 ACTIONS:
/broadcast <msg> - Message all users

ℹ️ /admin - This panel

🤖 Bot Info:
✅ Auto-Approve: Active
📢 Channels: %d
👥 Users: %d
✅ Approvals: %d
`, len(st.Channels), st.Users, st.Approvals)
}
