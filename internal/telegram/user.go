package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

func (b *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID

	var referredBy *int64
	if payload := c.Message().Payload; payload != "" {
		if ref, err := strconv.ParseInt(payload, 10, 64); err == nil {
			referredBy = &ref
		}
	}
	if _, err := b.engine.EnsureUser(ctx, userID, referredBy); err != nil {
		return err
	}

	ok, err := b.subscribedToAll(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		channels, err := b.admins.ListMandatoryChannels(ctx)
		if err != nil {
			return err
		}
		return c.Send("❌ Join the required channels to use the bot:", subscriptionGate(channels))
	}

	return c.Send(
		"Welcome to the investment bot! Use the menu below.",
		mainMenu(b.hasAdminAccess(ctx, userID)),
	)
}

func (b *Bot) handleCheckSubscription(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID

	ok, err := b.subscribedToAll(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "❌ You have not joined all channels yet!", ShowAlert: true})
	}

	_ = c.Delete()
	return c.Send("✅ Thanks! You can use the bot now.", mainMenu(b.hasAdminAccess(ctx, userID)))
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	text := c.Text()

	switch text {
	case menuTariffs:
		return b.sendTariffs(c)
	case menuCabinet:
		return b.sendCabinet(ctx, c)
	case menuBonuses:
		return b.sendBonuses(ctx, c)
	case menuReferral:
		return b.sendReferralLink(ctx, c)
	case menuWithdraw:
		return b.startWithdraw(ctx, c)
	case menuPromo:
		b.setState(userID, awaitPromoCode)
		return c.Send("🏷 Send your promo code (e.g. WELCOME5)")
	case menuSupport:
		return c.Send("❓ For questions contact the admin: @admin_username")
	case menuAdmin:
		return b.handleAdminPanel(c)
	}

	state, _ := b.state(userID)
	switch state {
	case awaitPromoCode:
		b.setState(userID, awaitNone)
		return b.redeemPromo(ctx, c, text)
	case awaitWithdrawDest:
		b.setState(userID, awaitNone)
		return b.finishWithdraw(ctx, c, text)
	case awaitScreenshot:
		return c.Send("Send a photo of the payment receipt.")
	case awaitNone:
		return nil
	default:
		return b.handleAdminInput(ctx, c, state)
	}
}

func (b *Bot) sendTariffs(c tele.Context) error {
	names := []string{"BASIC", "PRO", "ELITE"}
	prices := make(map[string]int64, len(names))
	text := "📊 Available tariffs:\n\n"
	for _, name := range names {
		t, ok := b.engine.Tariff(name)
		if !ok {
			continue
		}
		prices[name] = t.Price
		text += fmt.Sprintf("%s: %s\n", name, formatAmount(t.Price))
	}
	return c.Send(text, tariffMenu(names, prices))
}

func (b *Bot) handleBuy(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	tariff := c.Data()

	intent, err := b.engine.RequestDeposit(ctx, userID, tariff)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownTariff) {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Unknown tariff.", ShowAlert: true})
		}
		return err
	}

	b.setTariff(userID, intent.Tariff)
	b.setState(userID, awaitScreenshot)

	return c.Send(fmt.Sprintf(
		"💳 Tariff: %s\n💰 Amount: %s\n\nCard: %s\nName: %s\n\nSend a photo of the payment receipt.",
		intent.Tariff, formatAmount(intent.Amount), b.cfg.Telegram.CardNumber, b.cfg.Telegram.CardHolder,
	))
}

func (b *Bot) handlePhoto(c tele.Context) error {
	userID := c.Sender().ID
	state, tariff := b.state(userID)
	if state != awaitScreenshot {
		return nil
	}
	b.setState(userID, awaitNone)

	user, err := b.engine.GetUser(context.Background(), userID)
	if err != nil {
		return err
	}

	photo := c.Message().Photo
	photo.Caption = fmt.Sprintf(
		"🔔 New deposit!\nID: %d\nTariff: %s\nAmount: %s",
		userID, tariff, formatAmount(user.PendingAmount),
	)

	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(m.Data("✅ Confirm", btnConfirmDeposit.Unique, strconv.FormatInt(userID, 10))))

	if _, err := b.bot.Send(tele.ChatID(b.cfg.Telegram.AdminID), photo, m); err != nil {
		return err
	}
	return c.Send("✅ Thanks! Your receipt was sent. Wait for admin confirmation.")
}

func (b *Bot) sendCabinet(ctx context.Context, c tele.Context) error {
	user, err := b.engine.GetUser(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return c.Send(fmt.Sprintf(
		"👤 ID: %d\n\n💰 Balance: %s\n💎 Status: %s\n👥 Referrals: %d",
		user.ID, formatAmount(user.Balance), user.Status, user.ReferralCount,
	))
}

func (b *Bot) sendBonuses(ctx context.Context, c tele.Context) error {
	channels, err := b.admins.ListBonusChannels(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return c.Send("No bonus channels right now.")
	}

	text := "🎁 Join these channels and claim a bonus:\n\n"
	for _, ch := range channels {
		text += fmt.Sprintf("• %s — %s\n", ch.ChannelID, formatAmount(ch.Bonus))
	}
	return c.Send(text, bonusMenu(channels))
}

func (b *Bot) handleGetBonus(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	channelID := c.Data()

	subscribed := b.IsSubscribed(channelID, userID)
	result, err := b.engine.ClaimChannelBonus(ctx, userID, channelID, subscribed)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotSubscribed):
			return c.Respond(&tele.CallbackResponse{Text: "❌ Join the channel first!", ShowAlert: true})
		case errors.Is(err, ledger.ErrBonusAlreadyClaimed):
			return c.Respond(&tele.CallbackResponse{Text: "❌ You already claimed this bonus!", ShowAlert: true})
		case errors.Is(err, ledger.ErrUnknownChannel):
			return c.Respond(&tele.CallbackResponse{Text: "❌ This channel is no longer available.", ShowAlert: true})
		}
		return err
	}

	return c.Send(fmt.Sprintf("✅ Congratulations! %s added to your balance.", formatAmount(result.Bonus)))
}

func (b *Bot) handlePromoCommand(c tele.Context) error {
	code := c.Message().Payload
	if code == "" {
		return c.Send("❌ Usage: /promo CODE")
	}
	return b.redeemPromo(context.Background(), c, code)
}

func (b *Bot) redeemPromo(ctx context.Context, c tele.Context, code string) error {
	result, err := b.engine.RedeemPromo(ctx, c.Sender().ID, code)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnknownPromo):
			return c.Send("❌ Promo code not found.")
		case errors.Is(err, ledger.ErrPromoAlreadyUsed):
			return c.Send("❌ You already used this promo code.")
		case errors.Is(err, ledger.ErrPromoExhausted):
			return c.Send("❌ This promo code has run out of uses.")
		}
		return err
	}
	return c.Send(fmt.Sprintf("✅ Congratulations! %s added to your balance.", formatAmount(result.Amount)))
}

func (b *Bot) startWithdraw(ctx context.Context, c tele.Context) error {
	user, err := b.engine.GetUser(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if user.Balance < b.engine.MinWithdrawal() {
		return c.Send(fmt.Sprintf(
			"❌ Not enough funds on your balance.\nMinimum: %s",
			formatAmount(b.engine.MinWithdrawal()),
		))
	}
	b.setState(c.Sender().ID, awaitWithdrawDest)
	return c.Send("💳 Send the card number and name for the transfer:")
}

func (b *Bot) finishWithdraw(ctx context.Context, c tele.Context, destination string) error {
	request, err := b.engine.RequestWithdrawal(ctx, c.Sender().ID, destination)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return c.Send(fmt.Sprintf(
				"❌ Not enough funds on your balance.\nMinimum: %s",
				formatAmount(b.engine.MinWithdrawal()),
			))
		}
		return err
	}

	b.Notify(b.cfg.Telegram.AdminID, fmt.Sprintf(
		"💸 New withdrawal request!\n\nRequest: %d\nUser: %d\nAmount: %s\nCard: %s",
		request.ID, request.UserID, formatAmount(request.Amount), request.Destination,
	))
	return c.Send("✅ Your request was submitted. The transfer will arrive soon.")
}

func (b *Bot) sendReferralLink(ctx context.Context, c tele.Context) error {
	user, err := b.engine.GetUser(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if user.Status == model.StatusGuest {
		return c.Send("❌ Make at least one deposit to get your referral link.")
	}
	link := fmt.Sprintf("https://t.me/%s?start=%d", b.bot.Me.Username, user.ID)
	return c.Send(fmt.Sprintf(
		"👥 Your referral link:\n\n%s\n\nEarn a bonus for every friend who invests!", link,
	))
}
