// Package datagen builds synthetic agent metric tables for demos and load
// tests.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

// Columns is the header written by every writer, in order
var Columns = []string{
	types.ColAgentName, types.ColCampaign, types.ColDate, types.ColTime,
	"Q_LLA", "T_LOGIN", "T_HABLADO", "T_PAUSA", "T_ESPERA", "T_DISPONIBLE", "T_ACW",
	"Q_DIAS_TRABAJADOS",
	types.ColPromises, "Q_PDP_MONTO", "Q_PDP_CUMPLIDA", "Q_PDP_CUMPLIDA_MONTO",
	types.ColPhoneContacts, types.ColReferralContacts,
}

var (
	firstNames = []string{
		"José", "María", "Ana", "Juan", "Lucía", "Martín", "Sofía", "Andrés",
		"Camila", "Tomás", "Valentina", "Diego", "Inés", "Raúl", "Mariana", "Pablo",
	}
	lastNames = []string{
		"Pérez", "López", "Díaz", "Núñez", "Gómez", "Rodríguez", "Fernández",
		"Muñoz", "Rojas", "Sánchez", "Castro", "Vega",
	}
)

// Campaign is a campaign with its relative share of agents
type Campaign struct {
	Name   string
	Weight int
}

// DefaultCampaigns matches the built-in vocabulary
var DefaultCampaigns = []Campaign{
	{Name: "WOW PREVENTIVA", Weight: 55},
	{Name: "WOW COBRANZAS", Weight: 45},
}

// Options controls the shape of a generated table
type Options struct {
	Agents    int
	Start     time.Time
	Days      int
	FirstHour int
	LastHour  int
	Campaigns []Campaign
}

// DefaultOptions returns a month of hourly rows for 20 agents
func DefaultOptions() Options {
	return Options{
		Agents:    20,
		Start:     types.NewDate(2024, time.March, 1),
		Days:      30,
		FirstHour: 8,
		LastHour:  17,
		Campaigns: DefaultCampaigns,
	}
}

// Generator creates fake agent metric rows
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a new generator
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

type agentProfile struct {
	name      string
	campaign  string
	callsPerH float64
	talkSecs  float64
	closeRate float64
	workDays  []bool
}

// Generate creates one row per agent, day and working hour. Sundays are
// skipped and each agent misses some days at random.
func (g *Generator) Generate(opts Options) ([]types.Record, error) {
	if opts.Agents <= 0 || opts.Days <= 0 {
		return nil, fmt.Errorf("agents and days must be positive")
	}
	if opts.FirstHour < 0 || opts.LastHour > 23 || opts.FirstHour > opts.LastHour {
		return nil, fmt.Errorf("invalid working hours %d-%d", opts.FirstHour, opts.LastHour)
	}
	if limit := len(firstNames) * len(lastNames); opts.Agents > limit {
		return nil, fmt.Errorf("at most %d distinct agents can be generated", limit)
	}
	if len(opts.Campaigns) == 0 {
		opts.Campaigns = DefaultCampaigns
	}

	profiles := g.profiles(opts)

	var records []types.Record
	for day := 0; day < opts.Days; day++ {
		date := types.TruncateDate(opts.Start.AddDate(0, 0, day))
		if date.Weekday() == time.Sunday {
			continue
		}
		for _, p := range profiles {
			if !p.workDays[day] {
				continue
			}
			for hour := opts.FirstHour; hour <= opts.LastHour; hour++ {
				records = append(records, g.hourRow(p, date, hour, hour == opts.FirstHour))
			}
		}
	}

	return records, nil
}

func (g *Generator) profiles(opts Options) []agentProfile {
	weights := make([]int, len(opts.Campaigns))
	for i, c := range opts.Campaigns {
		weights[i] = c.Weight
	}

	// distinct names: walk a shuffled grid of first and last names
	grid := g.rng.Perm(len(firstNames) * len(lastNames))

	profiles := make([]agentProfile, opts.Agents)
	for i := range profiles {
		n := grid[i]
		workDays := make([]bool, opts.Days)
		for d := range workDays {
			workDays[d] = g.rng.Float64() > 0.08
		}

		profiles[i] = agentProfile{
			name:      firstNames[n%len(firstNames)] + " " + lastNames[n/len(firstNames)],
			campaign:  weightedChoice(g.rng, opts.Campaigns, weights).Name,
			callsPerH: 8 + g.rng.Float64()*12,
			talkSecs:  120 + g.rng.Float64()*180,
			closeRate: 0.25 + g.rng.Float64()*0.35,
			workDays:  workDays,
		}
	}
	return profiles
}

func (g *Generator) hourRow(p agentProfile, date time.Time, hour int, firstOfDay bool) types.Record {
	const hourSecs = 3600.0

	calls := math.Max(0, math.Round(p.callsPerH*(0.7+g.rng.Float64()*0.6)))
	talk := math.Min(calls*p.talkSecs*(0.8+g.rng.Float64()*0.4), hourSecs*0.75)
	acw := math.Min(calls*(20+g.rng.Float64()*25), hourSecs-talk)
	pause := math.Min(g.rng.Float64()*300, hourSecs-talk-acw)
	wait := math.Min(calls*(5+g.rng.Float64()*20), hourSecs-talk-acw-pause)
	available := hourSecs - talk - acw - pause - wait

	phone := math.Round(calls * (0.2 + g.rng.Float64()*0.2))
	referral := math.Round(calls * g.rng.Float64() * 0.08)
	promises := math.Round((phone + referral) * p.closeRate)
	kept := math.Round(promises * (0.5 + g.rng.Float64()*0.4))
	amount := promises * (50 + math.Round(g.rng.Float64()*250))
	keptAmount := kept * amount / math.Max(promises, 1)

	days := 0.0
	if firstOfDay {
		days = 1
	}

	return types.Record{
		AgentName: p.name,
		Campaign:  p.campaign,
		Date:      date,
		Time:      types.NewTimeOfDay(hour, 0, 0),
		HasTime:   true,
		Values: map[string]float64{
			"Q_LLA":                   calls,
			"T_LOGIN":                 dayFraction(hourSecs),
			"T_HABLADO":               dayFraction(talk),
			"T_PAUSA":                 dayFraction(pause),
			"T_ESPERA":                dayFraction(wait),
			"T_DISPONIBLE":            dayFraction(available),
			"T_ACW":                   dayFraction(acw),
			"Q_DIAS_TRABAJADOS":       days,
			types.ColPromises:         promises,
			"Q_PDP_MONTO":             math.Round(amount),
			"Q_PDP_CUMPLIDA":          kept,
			"Q_PDP_CUMPLIDA_MONTO":    math.Round(keptAmount),
			types.ColPhoneContacts:    phone,
			types.ColReferralContacts: referral,
		},
	}
}

// dayFraction stores durations the way spreadsheets do
func dayFraction(secs float64) float64 {
	return math.Round(secs) / 86400
}

// weightedChoice selects an item based on weights
func weightedChoice[T any](rng *rand.Rand, items []T, weights []int) T {
	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 {
		return items[rng.Intn(len(items))]
	}

	choice := rng.Intn(totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if choice < cumulative {
			return items[i]
		}
	}
	return items[0]
}
