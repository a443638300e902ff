package core

import (
	"slices"
	"strings"
)

// Vocabulary is the closed set of category labels for one statement kind.
type Vocabulary struct {
	Labels  []string
	Default string
}

var (
	accountVocabulary = Vocabulary{
		Labels: []string{
			"Alimentação",
			"Transporte",
			"Moradia",
			"Compras",
			"Lazer & Hobbies",
			"Saúde & Bem-estar",
			"Educação",
			"Serviços & Contas",
			"Salário & Renda",
			"Investimentos",
			"Viagens",
			"Presentes & Doações",
			"Outras Despesas",
			"Outras Receitas",
		},
		Default: "Outras Despesas",
	}

	cardVocabulary = Vocabulary{
		Labels: []string{
			"Restaurante",
			"Mercado",
			"Cafeteria",
			"Alimentação",
			"Transporte",
			"Uber",
			"Viagem",
			"Compras",
			"Roupas e acessórios",
			"Lazer",
			"Hobbies",
			"Salão de beleza",
			"Academia",
			"Subscrições",
			"Saúde & Bem-estar",
			"Seguro Saúde",
			"Moradia",
			"Aluguel",
			"Serviços",
			"Educação",
			"Presentes & Doações",
			"Miscellaneous",
		},
		Default: "Miscellaneous",
	}
)

// VocabularyFor returns the categorization vocabulary of kind. The returned
// value shares no slice with the package tables.
func VocabularyFor(kind Kind) (Vocabulary, error) {
	var v Vocabulary
	switch kind {
	case KindAccount:
		v = accountVocabulary
	case KindCard:
		v = cardVocabulary
	default:
		return Vocabulary{}, ErrUnknownKind
	}
	return Vocabulary{Labels: slices.Clone(v.Labels), Default: v.Default}, nil
}

// Contains reports whether label belongs to the vocabulary.
func (v Vocabulary) Contains(label string) bool {
	return slices.Contains(v.Labels, label)
}

// Coerce maps label onto the vocabulary. Exact matches win, then a
// case-insensitive match; anything else becomes the default label.
func (v Vocabulary) Coerce(label string) string {
	label = strings.TrimSpace(label)
	if v.Contains(label) {
		return label
	}
	for _, l := range v.Labels {
		if strings.EqualFold(l, label) {
			return l
		}
	}
	return v.Default
}

// Fill returns n copies of the default label.
func (v Vocabulary) Fill(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v.Default
	}
	return out
}
