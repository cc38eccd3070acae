package signal

import "fmt"

// Params is one complete set of detector thresholds.
type Params struct {
	RecentDays       int
	BaselineDays     int
	MinBaselineCount int
	Multiple         float64
	MinAmount        float64
}

// Overrides carries the caller-supplied scoring parameters. A nil
// field means "not supplied", which matters for mode selection.
type Overrides struct {
	RecentDays       *int
	BaselineDays     *int
	MinBaselineCount *int
	Multiple         *float64
	MinAmount        *float64
}

func (o Overrides) any() bool {
	return o.RecentDays != nil || o.BaselineDays != nil ||
		o.MinBaselineCount != nil || o.Multiple != nil || o.MinAmount != nil
}

const (
	ModePreset = "preset"
	ModeCustom = "custom"

	PresetDefault = "default"
	PresetStrict  = "strict"
	PresetLoose   = "loose"
)

var presets = map[string]Params{
	PresetDefault: {RecentDays: 14, BaselineDays: 60, MinBaselineCount: 10, Multiple: 5.0, MinAmount: 10_000},
	PresetStrict:  {RecentDays: 7, BaselineDays: 90, MinBaselineCount: 20, Multiple: 8.0, MinAmount: 50_000},
	PresetLoose:   {RecentDays: 30, BaselineDays: 60, MinBaselineCount: 5, Multiple: 3.0, MinAmount: 10_000},
}

// PresetNames lists the valid preset identifiers.
func PresetNames() []string {
	return []string{PresetDefault, PresetStrict, PresetLoose}
}

// Resolution records how a request's parameters were arrived at, for
// the response debug block.
type Resolution struct {
	Mode          string
	AppliedPreset string
	PresetInput   string
	Params        Params
	Clamped       bool
	Relaxed       bool
}

// Resolve runs the parameter state machine. Any explicit scoring
// override switches the request to custom mode, in which the default
// preset is the override base no matter which preset was named; the
// named preset is kept only for observability. Without overrides the
// named preset (or the default) applies verbatim.
func Resolve(presetInput string, o Overrides) (Resolution, error) {
	res := Resolution{PresetInput: presetInput}

	if presetInput != "" {
		if _, ok := presets[presetInput]; !ok {
			return Resolution{}, fmt.Errorf("unknown preset %q, allowed: default, strict, loose", presetInput)
		}
	}

	if o.any() {
		res.Mode = ModeCustom
		res.AppliedPreset = ModeCustom
		res.Params = presets[PresetDefault]
		if o.RecentDays != nil {
			res.Params.RecentDays = *o.RecentDays
		}
		if o.BaselineDays != nil {
			res.Params.BaselineDays = *o.BaselineDays
		}
		if o.MinBaselineCount != nil {
			res.Params.MinBaselineCount = *o.MinBaselineCount
		}
		if o.Multiple != nil {
			res.Params.Multiple = *o.Multiple
		}
		if o.MinAmount != nil {
			res.Params.MinAmount = *o.MinAmount
		}
	} else {
		res.Mode = ModePreset
		res.AppliedPreset = presetInput
		if res.AppliedPreset == "" {
			res.AppliedPreset = PresetDefault
		}
		res.Params = presets[res.AppliedPreset]
	}

	// The baseline window must cover the candidate window.
	if res.Params.BaselineDays < res.Params.RecentDays {
		res.Params.BaselineDays = res.Params.RecentDays
		res.Clamped = true
	}

	return res, nil
}

// adaptiveThresholds for thin baselines: under these symbol counts the
// minimum sample requirement relaxes so sparse tapes still surface
// signals.
const (
	sparseSymbolCount = 50
	thinSymbolCount   = 200
)

// Adapt relaxes MinBaselineCount for thin baseline coverage. It only
// applies in custom mode when the caller did not override the count
// themselves. symbolCount is the number of symbols with any baseline
// entry over the effective window.
func (r *Resolution) Adapt(o Overrides, symbolCount int) {
	if r.Mode != ModeCustom || o.MinBaselineCount != nil {
		return
	}

	before := r.Params.MinBaselineCount
	switch {
	case symbolCount < sparseSymbolCount:
		if r.Params.MinBaselineCount > 1 {
			r.Params.MinBaselineCount = 1
		}
	case symbolCount < thinSymbolCount:
		if r.Params.MinBaselineCount > 3 {
			r.Params.MinBaselineCount = 3
		}
	}
	r.Relaxed = r.Params.MinBaselineCount != before
}
