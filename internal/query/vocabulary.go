package query

import (
	"fmt"
	"os"
	"strings"

	"github.com/dennisdiepolder/monti/kpiquery/internal/textnorm"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"gopkg.in/yaml.v3"
)

// KeywordRule maps a phrase found in a question to a metric column
type KeywordRule struct {
	Keyword string `yaml:"keyword"`
	Column  string `yaml:"column"`
}

// CampaignRule maps a phrase found in a question to a canonical campaign
type CampaignRule struct {
	Fragment string `yaml:"fragment"`
	Campaign string `yaml:"campaign"`
}

// Vocabulary holds the ordered lookup tables used to read questions.
// Order is significant: the first matching rule wins, so a general keyword
// declared before a specific one shadows it. It is immutable once built.
type Vocabulary struct {
	Metrics         []KeywordRule  `yaml:"metrics"`
	Campaigns       []CampaignRule `yaml:"campaigns"`
	DurationColumns []string       `yaml:"duration_columns"`
	ClosureTriggers []string       `yaml:"closure_triggers"`

	durations map[string]bool
}

// DefaultVocabulary returns the built-in Spanish vocabulary
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		Metrics: []KeywordRule{
			{"llamadas", "Q_LLA"},
			{"realizo", "Q_LLA"},
			{"cuantas llamadas", "Q_LLA"},
			{"hablado", "T_HABLADO"},
			{"tiempo hablado", "T_HABLADO"},
			{"hablo", "T_HABLADO"},
			{"pausa", "T_PAUSA"},
			{"espera", "T_ESPERA"},
			{"disponible", "T_DISPONIBLE"},
			{"acw", "T_ACW"},
			{"post llamada", "T_ACW"},
			{"dias trabajados", "Q_DIAS_TRABAJADOS"},
			{"login", "T_LOGIN"},
			{"tiempo login", "T_LOGIN"},
			{"logueado", "T_LOGIN"},
			{"monto cumplido", "Q_PDP_CUMPLIDA_MONTO"},
			{"promesas cumplidas", "Q_PDP_CUMPLIDA"},
			{"pdp", "Q_PDP"},
			{"monto pdp", "Q_PDP_MONTO"},
			{"promesas", "Q_PDP"},
			{"cet", "Q_CET"},
			{"contactos efectivos telefono", "Q_CET"},
			{"ctr", "Q_CTR"},
			{"contactos efectivos referido", "Q_CTR"},
		},
		Campaigns: []CampaignRule{
			{"preventiva", "WOW PREVENTIVA"},
			{"cobranza", "WOW COBRANZAS"},
			{"cobranzas", "WOW COBRANZAS"},
			{"wow preventiva", "WOW PREVENTIVA"},
			{"wow cobranza", "WOW COBRANZAS"},
		},
		DurationColumns: []string{"T_LOGIN", "T_PAUSA", "T_ESPERA", "T_DISPONIBLE", "T_HABLADO", "T_ACW"},
		ClosureTriggers: []string{"porcentaje de cierre", "tasa de cierre"},
	}
	if err := v.prepare(); err != nil {
		panic(err)
	}
	return v
}

// LoadVocabulary reads a YAML vocabulary. Sections left out of the file keep
// their built-in values.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes a YAML vocabulary document
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file Vocabulary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	v := DefaultVocabulary()
	if file.Metrics != nil {
		v.Metrics = file.Metrics
	}
	if file.Campaigns != nil {
		v.Campaigns = file.Campaigns
	}
	if file.DurationColumns != nil {
		v.DurationColumns = file.DurationColumns
	}
	if file.ClosureTriggers != nil {
		v.ClosureTriggers = file.ClosureTriggers
	}

	if err := v.prepare(); err != nil {
		return nil, err
	}
	return v, nil
}

// prepare folds phrases, uppercases column names and validates every rule
func (v *Vocabulary) prepare() error {
	for i, rule := range v.Metrics {
		rule.Keyword = textnorm.Fold(strings.TrimSpace(rule.Keyword))
		rule.Column = strings.ToUpper(strings.TrimSpace(rule.Column))
		if rule.Keyword == "" || rule.Column == "" {
			return fmt.Errorf("metric rule %d: keyword and column are required", i+1)
		}
		v.Metrics[i] = rule
	}

	for i, rule := range v.Campaigns {
		rule.Fragment = textnorm.Fold(strings.TrimSpace(rule.Fragment))
		rule.Campaign = textnorm.Upper(rule.Campaign)
		if rule.Fragment == "" || rule.Campaign == "" {
			return fmt.Errorf("campaign rule %d: fragment and campaign are required", i+1)
		}
		v.Campaigns[i] = rule
	}

	for i, trigger := range v.ClosureTriggers {
		trigger = textnorm.Fold(strings.TrimSpace(trigger))
		if trigger == "" {
			return fmt.Errorf("closure trigger %d is empty", i+1)
		}
		v.ClosureTriggers[i] = trigger
	}

	v.durations = make(map[string]bool, len(v.DurationColumns))
	for i, col := range v.DurationColumns {
		col = strings.ToUpper(strings.TrimSpace(col))
		v.DurationColumns[i] = col
		v.durations[col] = true
	}

	return nil
}

// IsDuration reports whether a column holds fractions of a day
func (v *Vocabulary) IsDuration(column string) bool {
	return v.durations[column]
}

// Columns lists every numeric column the vocabulary can read, in declaration
// order and without duplicates, followed by the closure-rate inputs
func (v *Vocabulary) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, rule := range v.Metrics {
		add(rule.Column)
	}
	add(types.ColPromises)
	add(types.ColPhoneContacts)
	add(types.ColReferralContacts)
	return cols
}
