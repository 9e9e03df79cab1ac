// Package render formats the Portuguese texts the bot sends.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/centromex/food-rescue-bot/internal/models"
)

const Menu = `Olá! Como posso te ajudar hoje?

1️⃣ Quero doar comida
2️⃣ Sou ONG / projeto social
3️⃣ Preciso de comida
4️⃣ Sou voluntário (distribuição agora)

Digite o número da opção ou escreva sua dúvida.`

const (
	Fallback      = "⚠️ Não entendi sua resposta.\nPor favor, responda conforme solicitado ou digite MENU para voltar."
	InternalError = "⚠️ Algo deu errado. Digite MENU para recomeçar."
	Restarting    = "Reiniciando. Exibindo o menu principal."
)

// DonationDraft is the view of an unconfirmed donation.
type DonationDraft struct {
	FoodType  string
	Qty       string
	ExpiresAt string
	Location  string
}

func DonationSummary(d DonationDraft) string {
	var sb strings.Builder
	sb.WriteString("📋 CONFIRMAR DOAÇÃO:\n\n")
	sb.WriteString(fmt.Sprintf("🍽️  Comida: %s\n", d.FoodType))
	sb.WriteString(fmt.Sprintf("📦 Quantidade: %s\n", d.Qty))
	sb.WriteString(fmt.Sprintf("⏰ Válido até: %s\n", d.ExpiresAt))
	sb.WriteString(fmt.Sprintf("🏠 Local: %s\n\n", d.Location))
	sb.WriteString("✅ Correto? Responda SIM, NÃO para descartar ou EDITAR para refazer.\n")
	sb.WriteString("❌ Para cancelar, digite CANCELAR.")
	return sb.String()
}

func DonationCreated(matched bool) string {
	if matched {
		return "✅ Doação cadastrada com sucesso!\n\n🔍 Procurando organizações próximas para retirada..."
	}
	return "✅ Doação cadastrada com sucesso!\n\n📝 Estamos buscando um ponto de entrega próximo."
}

// PickupOptions lists organizations the donor can deliver to.
func PickupOptions(orgs []models.Organization) string {
	if len(orgs) == 0 {
		return "⚠️ Ainda não encontramos uma organização cadastrada próxima.\n" +
			"Um voluntário pode entrar em contato. Se precisar voltar ao menu, digite 'menu'."
	}

	var sb strings.Builder
	sb.WriteString("📍 Você pode entregar sua doação em uma das opções abaixo:\n")
	for _, org := range orgs {
		sb.WriteString(fmt.Sprintf("\n🏢 %s\n📞 %s\n🏙️ %s\n🚗 %s\n🕐 %s\n",
			org.Name,
			org.Phone,
			orDefault(org.CoverageArea, "Cobertura não informada"),
			pickupLabel(org.CanPickup),
			orDefault(org.Hours, "Horário não informado"),
		))
	}
	sb.WriteString("\nSe precisar de mais opções, digite 'menu'.")
	return sb.String()
}

// OrgNotification is sent to the organization a donation was suggested to.
func OrgNotification(d models.Donation) string {
	var sb strings.Builder
	sb.WriteString("🍽️ NOVA DOAÇÃO DISPONÍVEL!\n\n")
	sb.WriteString(fmt.Sprintf("📍 Comida: %s\n", d.FoodType))
	sb.WriteString(fmt.Sprintf("📦 Quantidade: %s\n", d.Qty))
	sb.WriteString(fmt.Sprintf("🏠 Local: %s\n", d.Location))
	sb.WriteString(fmt.Sprintf("⏰ Válido até: %s\n\n", d.ExpiresAt))
	sb.WriteString("Responda com:\n")
	sb.WriteString("✅ ACEITAR - para confirmar a coleta\n")
	sb.WriteString("❌ RECUSAR - para rejeitar esta doação\n\n")
	sb.WriteString("Ou ignore para decidir depois.")
	return sb.String()
}

// DonorAccepted tells the donor which organization will collect.
func DonorAccepted(org models.Organization, d models.Donation) string {
	var sb strings.Builder
	sb.WriteString("🎉 SUA DOAÇÃO FOI ACEITA!\n\n")
	sb.WriteString(fmt.Sprintf("🏢 Organização: %s\n", org.Name))
	sb.WriteString(fmt.Sprintf("📞 Contato: %s\n", org.Phone))
	sb.WriteString(fmt.Sprintf("📍 Local de coleta: %s\n\n", d.Location))
	sb.WriteString("A organização entrará em contato em breve para combinar os detalhes.")
	return sb.String()
}

func OrgAcceptConfirmed(d models.Donation) string {
	return fmt.Sprintf("✅ Coleta confirmada! O doador foi avisado.\n🏠 Local: %s\n⏰ Válido até: %s", d.Location, d.ExpiresAt)
}

const OrgRejectConfirmed = "👍 Tudo bem, vamos oferecer esta doação a outra organização."

// OrgDraft is the view of an unconfirmed organization registration.
type OrgDraft struct {
	Name         string
	CoverageArea string
	CanPickup    bool
	Hours        string
}

func OrgSummary(o OrgDraft) string {
	var sb strings.Builder
	sb.WriteString("🏢 CONFIRMAR CADASTRO:\n\n")
	sb.WriteString(fmt.Sprintf("📍 Nome: %s\n", o.Name))
	sb.WriteString(fmt.Sprintf("🏙️ Atuação: %s\n", o.CoverageArea))
	sb.WriteString(fmt.Sprintf("🚗 Busca: %s\n", yesNo(o.CanPickup)))
	sb.WriteString(fmt.Sprintf("🕐 Horários: %s\n\n", o.Hours))
	sb.WriteString("✅ Correto? Responda SIM para confirmar ou EDITAR para refazer.\n")
	sb.WriteString("❌ Para cancelar, digite CANCELAR.")
	return sb.String()
}

func OrgRegistered(org models.Organization) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Organização \"%s\" cadastrada com sucesso!\n\n", org.Name))
	sb.WriteString(fmt.Sprintf("🏙️ Região: %s\n", orDefault(org.CoverageArea, "Não informada")))
	sb.WriteString(fmt.Sprintf("🚗 Busca: %s\n", yesNo(org.CanPickup)))
	sb.WriteString(fmt.Sprintf("🕐 Horários: %s\n\n", orDefault(org.Hours, "Não informado")))
	sb.WriteString("🎯 Agora você receberá notificações de doações disponíveis na sua área.\n")
	sb.WriteString("📞 Fique atento às mensagens para oportunidades de retirada.\n\n")
	sb.WriteString("Digite MENU para voltar ao menu.")
	return sb.String()
}

// SeekerOption is a static pointer shown when nothing is registered nearby.
type SeekerOption struct {
	Name     string
	Phone    string
	Coverage string
	Hours    string
}

// SeekerOptions renders up to limit distributions and limit organizations,
// falling back to the static defaults when both are empty.
func SeekerOptions(dists []models.ActiveDistribution, orgs []models.Organization, defaults []SeekerOption, limit int) string {
	var options []string
	for i, d := range dists {
		if i == limit {
			break
		}
		options = append(options, fmt.Sprintf("🚚 %s | %s | %s | Até %s", d.Location, d.FoodType, d.Qty, clock(d.ExpiresAt)))
	}
	for i, org := range orgs {
		if i == limit {
			break
		}
		options = append(options, fmt.Sprintf("🏢 %s | %s | %s | %s",
			org.Name, org.Phone,
			orDefault(org.CoverageArea, "Região não informada"),
			orDefault(org.Hours, "Horário não informado")))
	}
	if len(options) == 0 {
		for i, opt := range defaults {
			if i == limit {
				break
			}
			options = append(options, fmt.Sprintf("🏢 %s | %s | %s | %s", opt.Name, opt.Phone, opt.Coverage, opt.Hours))
		}
	}

	var sb strings.Builder
	sb.WriteString("🍽️ OPÇÕES DE COMIDA PRÓXIMAS:\n")
	for _, opt := range options {
		sb.WriteString("- " + opt + "\n")
	}
	sb.WriteString("\n⚠️ IMPORTANTE:\n")
	sb.WriteString("• Não prometemos comida, apenas orientamos opções disponíveis\n")
	sb.WriteString("• Entre em contato diretamente com os locais\n")
	sb.WriteString("• Digite MENU para voltar")
	return sb.String()
}

// VolunteerDraft is the view of an unconfirmed volunteer registration.
type VolunteerDraft struct {
	Region       string
	Availability string
	HasTransport bool
	Location     string
}

func VolunteerSummary(v VolunteerDraft) string {
	return "✅ CONFIRMAR CADASTRO DE VOLUNTÁRIO\n\n" + volunteerLines(v) +
		"\nResponda SIM para confirmar ou CANCELAR para encerrar."
}

func VolunteerRegistered(v VolunteerDraft) string {
	return "✅ Voluntário cadastrado!\n\n" + volunteerLines(v) +
		"\nQuando houver match na sua região, você será acionado.\nDigite MENU para voltar."
}

func volunteerLines(v VolunteerDraft) string {
	return fmt.Sprintf("🏙️ Região: %s\n🕐 Disponibilidade: %s\n🚗 Transporte: %s\n📍 Referência: %s\n",
		v.Region, v.Availability, yesNo(v.HasTransport), v.Location)
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

func pickupLabel(canPickup bool) string {
	if canPickup {
		return "Retira no local"
	}
	return "Retirada no ponto informado"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("15:04")
}
