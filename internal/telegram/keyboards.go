package telegram

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"github.com/bbbislomjon-svg/piramida/internal/model"
)

// Main menu button labels. OnText dispatches on these.
const (
	menuTariffs  = "💎 Tariffs"
	menuCabinet  = "👤 My cabinet"
	menuBonuses  = "🎁 Bonuses"
	menuReferral = "👥 Referral program"
	menuWithdraw = "💸 Withdraw"
	menuPromo    = "🏷 Use promo code"
	menuSupport  = "ℹ️ Support"
	menuAdmin    = "🛠 Admin panel"
)

// Callback buttons. Dynamic payloads travel in the callback data.
var (
	btnCheckSub       = tele.Btn{Unique: "check_subscription"}
	btnBuy            = tele.Btn{Unique: "buy"}
	btnGetBonus       = tele.Btn{Unique: "getbonus"}
	btnConfirmDeposit = tele.Btn{Unique: "adm_ok"}

	btnAdminStats     = tele.Btn{Unique: "admin_stats", Text: "📊 Stats"}
	btnAdminMandatory = tele.Btn{Unique: "admin_mandatory", Text: "📢 Mandatory channels"}
	btnAdminBonus     = tele.Btn{Unique: "admin_bonus", Text: "🎁 Bonus channels"}
	btnAdminDeposits  = tele.Btn{Unique: "admin_deposits", Text: "💳 Deposits"}
	btnAdminWithdraws = tele.Btn{Unique: "admin_withdraws", Text: "💸 Withdrawals"}
	btnAdminPromos    = tele.Btn{Unique: "admin_promos", Text: "🏷 Promo codes"}
	btnAdminStaff     = tele.Btn{Unique: "admin_staff", Text: "👤 Admins"}
	btnAdminBroadcast = tele.Btn{Unique: "admin_broadcast", Text: "📣 Broadcast"}
	btnAdminBack      = tele.Btn{Unique: "admin_back", Text: "⬅️ Back"}

	btnMandAdd    = tele.Btn{Unique: "mand_add", Text: "➕ Add channel"}
	btnMandDel    = tele.Btn{Unique: "mand_del", Text: "➖ Remove channel"}
	btnBonusAdd   = tele.Btn{Unique: "bonus_add", Text: "➕ Add bonus channel"}
	btnBonusDel   = tele.Btn{Unique: "bonus_del", Text: "➖ Remove bonus channel"}
	btnPromoAdd   = tele.Btn{Unique: "promo_add", Text: "➕ Add promo code"}
	btnPromoDel   = tele.Btn{Unique: "promo_del", Text: "➖ Delete promo code"}
	btnDepConfirm = tele.Btn{Unique: "deposit_confirm", Text: "✅ Confirm"}
	btnWdConfirm  = tele.Btn{Unique: "withdraw_confirm", Text: "✅ Approve"}
	btnAdminAdd   = tele.Btn{Unique: "admin_add", Text: "➕ Add admin"}
	btnAdminDel   = tele.Btn{Unique: "admin_del", Text: "➖ Remove admin"}
)

func mainMenu(showAdmin bool) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	rows := []tele.Row{
		m.Row(m.Text(menuTariffs)),
		m.Row(m.Text(menuCabinet), m.Text(menuBonuses)),
		m.Row(m.Text(menuReferral), m.Text(menuWithdraw)),
		m.Row(m.Text(menuPromo), m.Text(menuSupport)),
	}
	if showAdmin {
		rows = append(rows, m.Row(m.Text(menuAdmin)))
	}
	m.Reply(rows...)
	return m
}

func adminMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data(btnAdminStats.Text, btnAdminStats.Unique)),
		m.Row(m.Data(btnAdminMandatory.Text, btnAdminMandatory.Unique)),
		m.Row(m.Data(btnAdminBonus.Text, btnAdminBonus.Unique)),
		m.Row(m.Data(btnAdminDeposits.Text, btnAdminDeposits.Unique)),
		m.Row(m.Data(btnAdminWithdraws.Text, btnAdminWithdraws.Unique)),
		m.Row(m.Data(btnAdminPromos.Text, btnAdminPromos.Unique)),
		m.Row(m.Data(btnAdminStaff.Text, btnAdminStaff.Unique)),
		m.Row(m.Data(btnAdminBroadcast.Text, btnAdminBroadcast.Unique)),
	)
	return m
}

func backMenu(buttons ...tele.Btn) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(buttons)+1)
	for _, btn := range buttons {
		rows = append(rows, m.Row(m.Data(btn.Text, btn.Unique)))
	}
	rows = append(rows, m.Row(m.Data(btnAdminBack.Text, btnAdminBack.Unique)))
	m.Inline(rows...)
	return m
}

func tariffMenu(names []string, tariffs map[string]int64) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(names))
	for _, name := range names {
		label := fmt.Sprintf("%s (%s)", name, formatAmount(tariffs[name]))
		rows = append(rows, m.Row(m.Data(label, btnBuy.Unique, name)))
	}
	m.Inline(rows...)
	return m
}

func bonusMenu(channels []model.BonusChannel) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, ch := range channels {
		rows = append(rows,
			m.Row(m.URL(fmt.Sprintf("Join %s", ch.ChannelID), channelURL(ch.ChannelID))),
			m.Row(m.Data("💰 Claim bonus", btnGetBonus.Unique, ch.ChannelID)),
		)
	}
	m.Inline(rows...)
	return m
}

func subscriptionGate(channels []string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, ch := range channels {
		rows = append(rows, m.Row(m.URL("Open channel", channelURL(ch))))
	}
	rows = append(rows, m.Row(m.Data("✅ Check", btnCheckSub.Unique)))
	m.Inline(rows...)
	return m
}

func channelURL(channelID string) string {
	if len(channelID) > 0 && channelID[0] == '@' {
		return "https://t.me/" + channelID[1:]
	}
	return "https://t.me/" + channelID
}

func formatAmount(amount int64) string {
	return fmt.Sprintf("%d sum", amount)
}
