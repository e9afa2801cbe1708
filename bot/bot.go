package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"earnings-bot/models"
	"earnings-bot/monitoring"
	"earnings-bot/services"

	tele "gopkg.in/telebot.v3"
)

const (
	earnCallbackPrefix     = "earn_"
	withdrawCallbackPrefix = "withdraw_"
)

// Core bundles the ledger engines the bot talks to.
type Core struct {
	Rules      models.ProgramRules
	Earning    *services.EarningEngine
	Referrals  *services.ReferralEngine
	Withdrawal *services.WithdrawalGate
	Ledger     *services.LedgerStore
	Now        func() time.Time
}

type Bot struct {
	bot  *tele.Bot
	core Core
}

func NewBot(token string, pollTimeout time.Duration, core Core) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
		OnError: func(err error, c tele.Context) {
			log.Printf("❌ [BOT] handler error: %v", err)
		},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	if core.Now == nil {
		core.Now = time.Now
	}

	b := &Bot{bot: bot, core: core}
	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/earn", b.handleEarn)
	b.bot.Handle("/balance", b.handleBalance)
	b.bot.Handle("/referral", b.handleReferral)
	b.bot.Handle("/withdraw", b.handleWithdraw)
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// StartPolling blocks until ctx is cancelled.
func (b *Bot) StartPolling(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	log.Printf("🤖 [BOT] polling as @%s", b.bot.Me.Username)
	b.bot.Start()
}

func userKey(u *tele.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func (b *Bot) handleStart(c tele.Context) error {
	user := c.Sender()
	text, err := b.core.startReply(userKey(user), user.FirstName, c.Message().Payload)
	if err != nil {
		return err
	}
	return c.Send(text)
}

func (b *Bot) handleEarn(c tele.Context) error {
	if _, err := b.core.ensureAccount(userKey(c.Sender())); err != nil {
		return err
	}
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, b.core.Earning.Catalog().Len())
	for i, a := range b.core.Earning.Catalog().ListActions() {
		rows = append(rows, markup.Row(markup.Data(actionButtonLabel(a), earnCallbackPrefix+strconv.Itoa(i))))
	}
	markup.Inline(rows...)
	return c.Send(earnMenuText(), markup)
}

func (b *Bot) handleBalance(c tele.Context) error {
	acc, err := b.core.ensureAccount(userKey(c.Sender()))
	if err != nil {
		return err
	}
	return c.Send(balanceText(acc))
}

func (b *Bot) handleReferral(c tele.Context) error {
	acc, err := b.core.ensureAccount(userKey(c.Sender()))
	if err != nil {
		return err
	}
	return c.Send(referralText(b.bot.Me.Username, acc, b.core.Rules))
}

func (b *Bot) handleWithdraw(c tele.Context) error {
	userID := userKey(c.Sender())
	if _, err := b.core.ensureAccount(userID); err != nil {
		return err
	}
	el := b.core.Withdrawal.CheckEligibility(userID)
	if !el.Eligible {
		return c.Send(eligibilityText(el))
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(models.WithdrawalMethods))
	for _, m := range models.WithdrawalMethods {
		rows = append(rows, markup.Row(markup.Data(m.Label(), withdrawCallbackPrefix+string(m))))
	}
	markup.Inline(rows...)
	return c.Send(eligibilityText(el), markup)
}

func (b *Bot) handleCallback(c tele.Context) error {
	defer c.Respond()

	// telebot prefixes callback data with \f and joins extra data with |
	data := strings.TrimPrefix(c.Callback().Data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		data = data[:i]
	}
	userID := userKey(c.Sender())

	text, ok := b.core.callbackReply(userID, data)
	if !ok {
		log.Printf("⚠️ [BOT] unknown callback data %q from %s", data, userID)
		return nil
	}
	return c.Edit(text)
}

func (core Core) ensureAccount(userID string) (models.UserAccount, error) {
	fc, err := core.Referrals.OnFirstContact(userID, "")
	if err != nil {
		return models.UserAccount{}, err
	}
	monitoring.RecordFirstContact(fc)
	return fc.Account, nil
}

func (core Core) startReply(userID, firstName, payload string) (string, error) {
	fc, err := core.Referrals.OnFirstContact(userID, strings.TrimSpace(payload))
	if err != nil {
		return "", err
	}
	monitoring.RecordFirstContact(fc)
	return welcomeText(firstName, fc, core.Rules), nil
}

// callbackReply resolves an inline button press into reply text.
func (core Core) callbackReply(userID, data string) (string, bool) {
	switch {
	case strings.HasPrefix(data, earnCallbackPrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(data, earnCallbackPrefix))
		if err != nil {
			return "", false
		}
		if _, err := core.ensureAccount(userID); err != nil {
			return earnResultText(models.EarningAction{}, services.Outcome{}, err), true
		}
		action, _ := core.Earning.Catalog().ActionAt(index)
		out, err := core.Earning.PerformAt(userID, index, core.Now())
		monitoring.RecordEarn(action.ID, out, err)
		return earnResultText(action, out, err), true

	case strings.HasPrefix(data, withdrawCallbackPrefix):
		method := strings.TrimPrefix(data, withdrawCallbackPrefix)
		receipt, err := core.Withdrawal.RequestWithdrawal(userID, method, core.Now())
		monitoring.RecordWithdrawal(method, err)
		if err == nil {
			log.Printf("💸 [BOT] withdrawal request %s: user=%s method=%s points=%d",
				receipt.Request.ID, userID, receipt.Request.Method, receipt.Request.PointsAtRequest)
		}
		return withdrawalResultText(receipt, err), true
	}
	return "", false
}
