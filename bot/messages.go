package bot

import (
	"errors"
	"fmt"
	"strings"

	"earnings-bot/models"
	"earnings-bot/services"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func pts(n int64) string { return printer.Sprintf("%d", n) }

func welcomeText(firstName string, fc services.FirstContact, rules models.ProgramRules) string {
	if fc.Referred {
		return fmt.Sprintf("🎉 Welcome %s! You received %s bonus points for using a referral link!\n\n"+
			"💰 Use /earn to start making more points!", firstName, pts(rules.SignupBonus))
	}
	return fmt.Sprintf("👋 Hi %s!\n\n"+
		"💰 Welcome to the Advanced Earnings Bot!\n\n"+
		"🔄 Use /earn to see earning methods\n"+
		"📊 Use /balance to check your points\n"+
		"🎁 Use /referral to get your invite link\n"+
		"💸 Use /withdraw to cash out your earnings", firstName)
}

// actionButtonLabel shows the reward range; rewards are drawn per use.
func actionButtonLabel(a models.EarningAction) string {
	if a.Points.Min == a.Points.Max {
		return fmt.Sprintf("%s (+%s pts)", a.Name, pts(a.Points.Min))
	}
	return fmt.Sprintf("%s (+%s–%s pts)", a.Name, pts(a.Points.Min), pts(a.Points.Max))
}

func earnMenuText() string { return "💡 Choose an earning method:" }

func earnResultText(action models.EarningAction, out services.Outcome, err error) string {
	var cooldown *services.CooldownError
	switch {
	case err == nil && out.Bonus > 0:
		return fmt.Sprintf("🎉 You earned %s points (%s + %s referral bonus) from %s!\n\n💰 Total points: %s",
			pts(out.TotalAwarded), pts(out.BasePoints), pts(out.Bonus), action.Name, pts(out.NewBalance))
	case err == nil:
		return fmt.Sprintf("🎉 You earned %s points from %s!\n\n💰 Total points: %s",
			pts(out.TotalAwarded), action.Name, pts(out.NewBalance))
	case errors.As(err, &cooldown):
		return fmt.Sprintf("⏳ Please wait %d seconds before using '%s' again.", cooldown.RemainingSeconds(), action.Name)
	case errors.Is(err, services.ErrUnknownAction):
		return "❓ That earning method is no longer available. Use /earn to see the current list."
	}
	return "⚠️ Something went wrong, please try again later."
}

func balanceText(acc models.UserAccount) string {
	return fmt.Sprintf("💰 Your current balance: %s points\n\n"+
		"👥 Referrals: %s\n"+
		"🔗 Use /referral to invite friends and earn more!", pts(acc.Points), pts(acc.ReferralCount))
}

func referralLink(botUsername, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, code)
}

func referralText(botUsername string, acc models.UserAccount, rules models.ProgramRules) string {
	return fmt.Sprintf("📢 Invite your friends and earn %s points for every friend who joins!\n\n"+
		"🔗 Your referral link:\n%s\n\n"+
		"👥 People invited: %s\n"+
		"💸 Friends you invite get a %d%% bonus chance on their earnings!",
		pts(rules.ReferrerBonus), referralLink(botUsername, acc.ReferralCode), pts(acc.ReferralCount),
		int(rules.ReferralBonusChance*100))
}

func eligibilityText(el services.Eligibility) string {
	if !el.Eligible {
		return fmt.Sprintf("❌ You need at least %s points to withdraw. You currently have %s points.\n\n"+
			"💡 Complete more tasks to earn more points!", pts(el.Required), pts(el.Have))
	}
	return "💸 Choose your withdrawal method (1,000 points = $1):"
}

func withdrawalResultText(receipt services.WithdrawalReceipt, err error) string {
	var insufficient *services.InsufficientError
	switch {
	case err == nil:
		return fmt.Sprintf("✉️ Please send your %s details to the bot admin to process your withdrawal.\n\n"+
			"🧾 Request: %s\n"+
			"💰 You have %s points available.\n"+
			"⚠️ Withdrawals typically process within 24-48 hours.",
			strings.ToUpper(receipt.Request.Method.Label()), receipt.Request.ID, pts(receipt.Available))
	case errors.As(err, &insufficient):
		return eligibilityText(services.Eligibility{Required: insufficient.Required, Have: insufficient.Have})
	case errors.Is(err, services.ErrUnknownMethod):
		return "❓ Unknown withdrawal method. Use /withdraw to pick one of the listed options."
	}
	return "⚠️ Something went wrong, please try again later."
}
