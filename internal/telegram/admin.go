package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
)

const adminPanelText = "🛠 ADMIN PANEL\n\nChoose a section 👇"

func (b *Bot) handleAdminPanel(c tele.Context) error {
	if !b.hasAdminAccess(context.Background(), c.Sender().ID) {
		return nil
	}
	return c.Send(adminPanelText, adminMenu())
}

// requireAdmin wraps callback handlers with the access check.
func (b *Bot) requireAdmin(c tele.Context) bool {
	if b.hasAdminAccess(context.Background(), c.Sender().ID) {
		return true
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "❌ No access.", ShowAlert: true})
	return false
}

func (b *Bot) awaitInput(state awaiting, prompt string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !b.requireAdmin(c) {
			return nil
		}
		b.setState(c.Sender().ID, state)
		return c.Send(prompt)
	}
}

func (b *Bot) awaitRootInput(state awaiting, prompt string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !b.admins.IsRoot(c.Sender().ID) {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Root admin only.", ShowAlert: true})
		}
		b.setState(c.Sender().ID, state)
		return c.Send(prompt)
	}
}

func (b *Bot) handleAdminStats(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	stats, err := b.admins.Stats(context.Background())
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"📊 STATS\n\n👥 Users: %d\n💰 Total balances: %s\n⏳ Pending deposits: %s\n💸 Pending withdrawals: %d",
		stats.UserCount, formatAmount(stats.TotalBalance),
		formatAmount(stats.TotalPendingDeposit), stats.PendingWithdrawals,
	)
	return c.Edit(text, adminMenu())
}

func (b *Bot) handleAdminMandatory(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	channels, err := b.admins.ListMandatoryChannels(context.Background())
	if err != nil {
		return err
	}
	text := "📢 Mandatory channels:\n\n"
	for _, ch := range channels {
		text += fmt.Sprintf("• %s\n", ch)
	}
	return c.Edit(text, backMenu(btnMandAdd, btnMandDel))
}

func (b *Bot) handleAdminBonus(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	channels, err := b.admins.ListBonusChannels(context.Background())
	if err != nil {
		return err
	}
	text := "🎁 Bonus channels:\n\n"
	for _, ch := range channels {
		text += fmt.Sprintf("• %s (%s)\n", ch.ChannelID, formatAmount(ch.Bonus))
	}
	return c.Edit(text, backMenu(btnBonusAdd, btnBonusDel))
}

func (b *Bot) handleAdminPromos(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	promos, err := b.admins.ListPromoCodes(context.Background())
	if err != nil {
		return err
	}
	text := "🏷 Promo codes:\n\n"
	for _, p := range promos {
		text += fmt.Sprintf("• %s | %s | %d uses left\n", p.Code, formatAmount(p.Amount), p.RemainingUses)
	}
	return c.Edit(text, backMenu(btnPromoAdd, btnPromoDel))
}

func (b *Bot) handleAdminDeposits(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	users, err := b.admins.ListPendingDeposits(context.Background())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return c.Edit("No pending deposits.", adminMenu())
	}

	text := "💳 Pending deposits:\n"
	for _, u := range users {
		tariff := ""
		if u.PendingTariff != nil {
			tariff = *u.PendingTariff
		}
		text += fmt.Sprintf("\n🆔 %d | %s\nTariff: %s\n", u.ID, formatAmount(u.PendingAmount), tariff)
	}
	return c.Edit(text, backMenu(btnDepConfirm))
}

func (b *Bot) handleAdminWithdraws(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	requests, err := b.admins.ListPendingWithdrawals(context.Background())
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return c.Edit("No pending withdrawals.", adminMenu())
	}

	text := "💸 Withdrawal requests:\n"
	for _, r := range requests {
		text += fmt.Sprintf("\n🆔 %d | user %d | %s\nCard: %s\n", r.ID, r.UserID, formatAmount(r.Amount), r.Destination)
	}
	return c.Edit(text, backMenu(btnWdConfirm))
}

func (b *Bot) handleAdminStaff(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	admins, err := b.admins.ListAdmins(context.Background())
	if err != nil {
		return err
	}
	text := "👤 Admins:\n\n"
	for _, a := range admins {
		text += fmt.Sprintf("• %d\n", a.UserID)
	}
	if len(admins) == 0 {
		text += "No extra admins yet.\n"
	}
	return c.Edit(text, backMenu(btnAdminAdd, btnAdminDel))
}

func (b *Bot) handleAdminBroadcast(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	b.setState(c.Sender().ID, awaitBroadcast)
	return c.Send("📣 Send the message to broadcast (photo, video or text):")
}

func (b *Bot) handleAdminBack(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	b.setState(c.Sender().ID, awaitNone)
	return c.Edit(adminPanelText, adminMenu())
}

// handleConfirmDepositCallback confirms the deposit attached to the
// forwarded receipt.
func (b *Bot) handleConfirmDepositCallback(c tele.Context) error {
	if !b.requireAdmin(c) {
		return nil
	}
	userID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Bad user ID.", ShowAlert: true})
	}

	if err := b.confirmDeposit(context.Background(), userID); err != nil {
		if errors.Is(err, ledger.ErrNoPendingDeposit) || errors.Is(err, ledger.ErrUserNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Deposit not found.", ShowAlert: true})
		}
		return err
	}
	_ = c.Edit("✅ Deposit confirmed.")
	return nil
}

func (b *Bot) confirmDeposit(ctx context.Context, userID int64) error {
	result, err := b.engine.ConfirmDeposit(ctx, userID)
	if err != nil {
		return err
	}

	b.Notify(userID, "✅ Your deposit was confirmed, balance updated.")
	if result.ReferrerID != nil {
		b.Notify(*result.ReferrerID, fmt.Sprintf(
			"🎉 Your referral invested! %s added to your balance.",
			formatAmount(result.ReferralBonus),
		))
	}
	return nil
}

// handleAdminInput consumes the free-form message an admin flow is waiting
// for.
func (b *Bot) handleAdminInput(ctx context.Context, c tele.Context, state awaiting) error {
	userID := c.Sender().ID
	if !b.hasAdminAccess(ctx, userID) {
		b.setState(userID, awaitNone)
		return nil
	}
	if state == awaitBroadcast {
		b.setState(userID, awaitNone)
		return b.broadcast(ctx, c)
	}

	text := strings.TrimSpace(c.Text())

	switch state {
	case awaitMandAdd:
		b.setState(userID, awaitNone)
		if err := b.admins.AddMandatoryChannel(ctx, text); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf("✅ %s added.", text), adminMenu())

	case awaitMandDel:
		b.setState(userID, awaitNone)
		if err := b.admins.DeleteMandatoryChannel(ctx, text); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf("🗑 %s removed.", text), adminMenu())

	case awaitBonusAdd:
		args := strings.Fields(text)
		if len(args) < 2 {
			return c.Send("❌ Format: @channel 500")
		}
		bonus, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || bonus <= 0 {
			return c.Send("❌ Bonus must be a positive number.")
		}
		b.setState(userID, awaitNone)
		if err := b.admins.UpsertBonusChannel(ctx, args[0], bonus); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf("✅ %s (%s) added.", args[0], formatAmount(bonus)), adminMenu())

	case awaitBonusDel:
		b.setState(userID, awaitNone)
		if err := b.admins.DeleteBonusChannel(ctx, text); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf("🗑 %s removed.", text), adminMenu())

	case awaitPromoAdd:
		args := strings.Fields(text)
		if len(args) < 3 {
			return c.Send("❌ Format: CODE AMOUNT LIMIT")
		}
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || amount <= 0 {
			return c.Send("❌ Amount must be a positive number.")
		}
		uses, err := strconv.Atoi(args[2])
		if err != nil || uses <= 0 {
			return c.Send("❌ Limit must be a positive number.")
		}
		b.setState(userID, awaitNone)
		if err := b.admins.CreatePromoCode(ctx, args[0], amount, uses); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf("✅ Promo code %s created.", args[0]), adminMenu())

	case awaitPromoDel:
		b.setState(userID, awaitNone)
		if err := b.admins.DeletePromoCode(ctx, text); err != nil {
			return err
		}
		return c.Send(fmt.Sprintf("🗑 Promo code %s deleted.", text), adminMenu())

	case awaitDepositConfirm:
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return c.Send("❌ The user ID must be a number.")
		}
		b.setState(userID, awaitNone)
		if err := b.confirmDeposit(ctx, target); err != nil {
			if errors.Is(err, ledger.ErrNoPendingDeposit) || errors.Is(err, ledger.ErrUserNotFound) {
				return c.Send("❌ Deposit not found.")
			}
			return err
		}
		return c.Send("✅ Deposit confirmed.", adminMenu())

	case awaitWithdrawConfirm:
		requestID, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return c.Send("❌ The request ID must be a number.")
		}
		b.setState(userID, awaitNone)
		result, err := b.engine.ApproveWithdrawal(ctx, requestID)
		if err != nil {
			switch {
			case errors.Is(err, ledger.ErrRequestNotFound):
				return c.Send("❌ Request not found.")
			case errors.Is(err, ledger.ErrAlreadyProcessed):
				return c.Send("❌ Request already processed.")
			case errors.Is(err, ledger.ErrInsufficientBalance):
				return c.Send("❌ The user's balance dropped below the requested amount; request left pending.")
			}
			return err
		}
		b.Notify(result.Request.UserID, "✅ Your withdrawal request was approved.")
		return c.Send("✅ Withdrawal approved.", adminMenu())

	case awaitAdminAdd:
		if !b.admins.IsRoot(userID) {
			b.setState(userID, awaitNone)
			return nil
		}
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return c.Send("❌ The user ID must be a number.")
		}
		b.setState(userID, awaitNone)
		if err := b.admins.AddAdmin(ctx, target, userID); err != nil {
			return err
		}
		return c.Send("✅ Admin added.", adminMenu())

	case awaitAdminDel:
		if !b.admins.IsRoot(userID) {
			b.setState(userID, awaitNone)
			return nil
		}
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return c.Send("❌ The user ID must be a number.")
		}
		b.setState(userID, awaitNone)
		if err := b.admins.RemoveAdmin(ctx, target); err != nil {
			return err
		}
		return c.Send("🗑 Admin removed.", adminMenu())
	}

	return nil
}

func (b *Bot) broadcast(ctx context.Context, c tele.Context) error {
	targets, err := b.admins.BroadcastTargets(ctx)
	if err != nil {
		return err
	}
	count := 0
	for _, id := range targets {
		if _, err := b.bot.Copy(tele.ChatID(id), c.Message()); err != nil {
			continue
		}
		count++
	}
	return c.Send(fmt.Sprintf("✅ Delivered to %d users.", count), adminMenu())
}
