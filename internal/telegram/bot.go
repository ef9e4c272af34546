package telegram

import (
	"context"
	"log"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/bbbislomjon-svg/piramida/internal/config"
	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/service"
)

// awaiting marks what free-form input the bot expects from a chat next.
type awaiting int

const (
	awaitNone awaiting = iota
	awaitScreenshot
	awaitPromoCode
	awaitWithdrawDest
	awaitMandAdd
	awaitMandDel
	awaitBonusAdd
	awaitBonusDel
	awaitPromoAdd
	awaitPromoDel
	awaitDepositConfirm
	awaitWithdrawConfirm
	awaitAdminAdd
	awaitAdminDel
	awaitBroadcast
)

type session struct {
	state  awaiting
	tariff string
}

// Bot is the chat presentation layer. It parses updates into typed engine
// calls and renders the outcomes; all state transitions happen in the
// ledger engine.
type Bot struct {
	bot    *tele.Bot
	cfg    *config.Config
	engine *ledger.Engine
	admins *service.AdminService

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewBot(cfg *config.Config, engine *ledger.Engine, admins *service.AdminService) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &tele.LongPoller{Timeout: 60 * time.Second},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		bot:      bot,
		cfg:      cfg,
		engine:   engine,
		admins:   admins,
		sessions: make(map[int64]*session),
	}

	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/promo", b.handlePromoCommand)
	b.bot.Handle("/admin", b.handleAdminPanel)

	b.bot.Handle(tele.OnText, b.handleText)
	b.bot.Handle(tele.OnPhoto, b.handlePhoto)

	b.bot.Handle(&btnCheckSub, b.handleCheckSubscription)
	b.bot.Handle(&btnBuy, b.handleBuy)
	b.bot.Handle(&btnGetBonus, b.handleGetBonus)
	b.bot.Handle(&btnConfirmDeposit, b.handleConfirmDepositCallback)

	b.bot.Handle(&btnAdminStats, b.handleAdminStats)
	b.bot.Handle(&btnAdminMandatory, b.handleAdminMandatory)
	b.bot.Handle(&btnAdminBonus, b.handleAdminBonus)
	b.bot.Handle(&btnAdminDeposits, b.handleAdminDeposits)
	b.bot.Handle(&btnAdminWithdraws, b.handleAdminWithdraws)
	b.bot.Handle(&btnAdminPromos, b.handleAdminPromos)
	b.bot.Handle(&btnAdminStaff, b.handleAdminStaff)
	b.bot.Handle(&btnAdminBroadcast, b.handleAdminBroadcast)
	b.bot.Handle(&btnAdminBack, b.handleAdminBack)

	b.bot.Handle(&btnMandAdd, b.awaitInput(awaitMandAdd, "Send the channel username to add (e.g. @channel):"))
	b.bot.Handle(&btnMandDel, b.awaitInput(awaitMandDel, "Send the channel username to remove:"))
	b.bot.Handle(&btnBonusAdd, b.awaitInput(awaitBonusAdd, "Format: @channel 500"))
	b.bot.Handle(&btnBonusDel, b.awaitInput(awaitBonusDel, "Send the channel username to remove:"))
	b.bot.Handle(&btnPromoAdd, b.awaitInput(awaitPromoAdd, "Format: CODE AMOUNT LIMIT"))
	b.bot.Handle(&btnPromoDel, b.awaitInput(awaitPromoDel, "Send the promo code to delete:"))
	b.bot.Handle(&btnDepConfirm, b.awaitInput(awaitDepositConfirm, "Send the user ID to confirm:"))
	b.bot.Handle(&btnWdConfirm, b.awaitInput(awaitWithdrawConfirm, "Send the request ID to approve:"))
	b.bot.Handle(&btnAdminAdd, b.awaitRootInput(awaitAdminAdd, "Send the user ID to promote:"))
	b.bot.Handle(&btnAdminDel, b.awaitRootInput(awaitAdminDel, "Send the user ID to demote:"))
}

// StartPolling runs the long poller until ctx is cancelled.
func (b *Bot) StartPolling(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	log.Println("Telegram bot polling started")
	b.bot.Start()
}

// Notify sends a plain message to a user, best effort.
func (b *Bot) Notify(userID int64, text string) {
	if _, err := b.bot.Send(tele.ChatID(userID), text); err != nil {
		log.Printf("Failed to notify user %d: %v", userID, err)
	}
}

func (b *Bot) setState(userID int64, state awaiting) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == awaitNone {
		delete(b.sessions, userID)
		return
	}
	s, ok := b.sessions[userID]
	if !ok {
		s = &session{}
		b.sessions[userID] = s
	}
	s.state = state
}

func (b *Bot) setTariff(userID int64, tariff string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	if !ok {
		s = &session{}
		b.sessions[userID] = s
	}
	s.tariff = tariff
}

func (b *Bot) state(userID int64) (awaiting, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	if !ok {
		return awaitNone, ""
	}
	return s.state, s.tariff
}

// channel lets "@username" strings address channels directly.
type channel string

func (ch channel) Recipient() string { return string(ch) }

// IsSubscribed verifies channel membership via the chat API. Transport
// errors count as "not verified".
func (b *Bot) IsSubscribed(channelID string, userID int64) bool {
	member, err := b.bot.ChatMemberOf(channel(channelID), tele.ChatID(userID))
	if err != nil {
		return false
	}
	return member.Role != tele.Left && member.Role != tele.Kicked
}

// subscribedToAll checks the mandatory-channel gate. Channels the bot cannot
// query are skipped, matching the permissive gate of the admin-less setup.
func (b *Bot) subscribedToAll(ctx context.Context, userID int64) (bool, error) {
	channels, err := b.admins.ListMandatoryChannels(ctx)
	if err != nil {
		return false, err
	}
	for _, ch := range channels {
		member, err := b.bot.ChatMemberOf(channel(ch), tele.ChatID(userID))
		if err != nil {
			continue
		}
		if member.Role == tele.Left || member.Role == tele.Kicked {
			return false, nil
		}
	}
	return true, nil
}

func (b *Bot) hasAdminAccess(ctx context.Context, userID int64) bool {
	ok, err := b.admins.HasAccess(ctx, userID)
	if err != nil {
		log.Printf("Failed to check admin access for %d: %v", userID, err)
		return false
	}
	return ok
}
