package categorize

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"finboard/internal/core"
)

type rule struct {
	keyword string
	label   string
}

// Rules are matched in order against the lowercased, accent-free
// description; the first keyword contained in it wins.
var (
	cardRules = []rule{
		{"uber eats", "Restaurante"}, {"ifood", "Restaurante"}, {"rappi", "Restaurante"},
		{"restaurante", "Restaurante"}, {"burger", "Restaurante"}, {"pizza", "Restaurante"},
		{"uber", "Uber"}, {"99app", "Uber"}, {"99 pop", "Uber"},
		{"starbucks", "Cafeteria"}, {"cafe", "Cafeteria"}, {"padaria", "Cafeteria"},
		{"amazon", "Compras"}, {"mercadolivre", "Compras"}, {"mercado livre", "Compras"}, {"shopee", "Compras"}, {"magalu", "Compras"},
		{"supermercado", "Mercado"}, {"mercado", "Mercado"}, {"carrefour", "Mercado"},
		{"pao de acucar", "Mercado"}, {"assai", "Mercado"}, {"hortifruti", "Mercado"},
		{"netflix", "Subscrições"}, {"spotify", "Subscrições"}, {"disney", "Subscrições"},
		{"prime video", "Subscrições"}, {"youtube", "Subscrições"}, {"icloud", "Subscrições"},
		{"smart fit", "Academia"}, {"academia", "Academia"}, {"gympass", "Academia"}, {"wellhub", "Academia"},
		{"farmacia", "Saúde & Bem-estar"}, {"drogasil", "Saúde & Bem-estar"}, {"droga raia", "Saúde & Bem-estar"},
		{"unimed", "Seguro Saúde"}, {"amil", "Seguro Saúde"}, {"bradesco saude", "Seguro Saúde"}, {"sulamerica", "Seguro Saúde"},
		{"latam", "Viagem"}, {"gol linhas", "Viagem"}, {"azul", "Viagem"}, {"airbnb", "Viagem"}, {"booking", "Viagem"}, {"hotel", "Viagem"},
		{"posto", "Transporte"}, {"shell", "Transporte"}, {"ipiranga", "Transporte"}, {"estacionamento", "Transporte"}, {"sem parar", "Transporte"},
		{"renner", "Roupas e acessórios"}, {"zara", "Roupas e acessórios"}, {"c&a", "Roupas e acessórios"}, {"riachuelo", "Roupas e acessórios"},
		{"salao", "Salão de beleza"}, {"barbearia", "Salão de beleza"},
		{"cinema", "Lazer"}, {"ingresso", "Lazer"}, {"steam", "Hobbies"}, {"playstation", "Hobbies"},
		{"aluguel", "Aluguel"}, {"condominio", "Moradia"},
		{"escola", "Educação"}, {"curso", "Educação"}, {"udemy", "Educação"}, {"alura", "Educação"},
		{"vivo", "Serviços"}, {"claro", "Serviços"}, {"tim ", "Serviços"}, {"enel", "Serviços"}, {"sabesp", "Serviços"},
		{"doacao", "Presentes & Doações"}, {"presente", "Presentes & Doações"},
	}

	accountRules = []rule{
		{"salario", "Salário & Renda"}, {"pagamento recebido", "Salário & Renda"}, {"pro labore", "Salário & Renda"},
		{"rendimento", "Investimentos"}, {"aplicacao", "Investimentos"}, {"resgate", "Investimentos"},
		{"tesouro", "Investimentos"}, {"cdb", "Investimentos"}, {"corretora", "Investimentos"},
		{"aluguel", "Moradia"}, {"condominio", "Moradia"}, {"iptu", "Moradia"},
		{"energia", "Serviços & Contas"}, {"enel", "Serviços & Contas"}, {"sabesp", "Serviços & Contas"},
		{"internet", "Serviços & Contas"}, {"vivo", "Serviços & Contas"}, {"claro", "Serviços & Contas"},
		{"tarifa", "Serviços & Contas"}, {"boleto", "Serviços & Contas"},
		{"amazon", "Compras"}, {"mercado livre", "Compras"}, {"shopee", "Compras"},
		{"ifood", "Alimentação"}, {"supermercado", "Alimentação"}, {"mercado", "Alimentação"},
		{"restaurante", "Alimentação"}, {"padaria", "Alimentação"},
		{"uber", "Transporte"}, {"99app", "Transporte"}, {"posto", "Transporte"}, {"metro", "Transporte"},
		{"farmacia", "Saúde & Bem-estar"}, {"drogasil", "Saúde & Bem-estar"}, {"hospital", "Saúde & Bem-estar"},
		{"escola", "Educação"}, {"faculdade", "Educação"}, {"curso", "Educação"},
		{"netflix", "Lazer & Hobbies"}, {"spotify", "Lazer & Hobbies"}, {"cinema", "Lazer & Hobbies"},
		{"latam", "Viagens"}, {"airbnb", "Viagens"}, {"hotel", "Viagens"},
		{"doacao", "Presentes & Doações"}, {"vakinha", "Presentes & Doações"},
		{"pix recebido", "Outras Receitas"}, {"ted recebida", "Outras Receitas"}, {"estorno", "Outras Receitas"},
	}
)

// Static categorizes with keyword rules and never calls out of process.
type Static struct{}

func (Static) Categorize(_ context.Context, kind core.Kind, descriptions []string) []string {
	v, err := core.VocabularyFor(kind)
	if err != nil {
		v, _ = core.VocabularyFor(core.KindAccount)
	}
	rules := accountRules
	if kind == core.KindCard {
		rules = cardRules
	}

	out := make([]string, len(descriptions))
	for i, desc := range descriptions {
		out[i] = v.Default
		key := normalizeDescription(desc)
		for _, r := range rules {
			if strings.Contains(key, r.keyword) {
				out[i] = v.Coerce(r.label)
				break
			}
		}
	}
	return out
}

// normalizeDescription lowercases, removes accents and collapses spaces.
func normalizeDescription(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if out, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s); err == nil {
		return out
	}
	return s
}
