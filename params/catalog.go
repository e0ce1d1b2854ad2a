// Package params is the static JP-8080 parameter catalog: which panel
// controls exist, how each one is carried on the wire, and the patch bank
// table used for program selection.
package params

// ID identifies one controllable quantity. IDs are dense indexes into the
// catalog table; catalog order is ID order.
type ID int

const (
	// Oscillator
	Osc1Waveform ID = iota
	Osc1Control1
	Osc1Control2
	Osc2Waveform
	Osc2Range
	Osc2FineWide
	Osc2Control1
	Osc2Control2
	OscBalance
	XModDepth
	OscLFO1Depth

	// Pitch envelope
	PitchEnvDepth
	PitchEnvAttack
	PitchEnvDecay

	// Filter
	FilterCutoff
	FilterResonance
	FilterKeyFollow
	FilterLFO1Depth
	FilterEnvDepth
	FilterEnvAttack
	FilterEnvDecay
	FilterEnvSustain
	FilterEnvRelease

	// Amplifier
	AmpLevel
	AmpLFO1Depth
	AmpEnvAttack
	AmpEnvDecay
	AmpEnvSustain
	AmpEnvRelease

	// LFO
	LFO1Waveform
	LFO1Rate
	LFO1Fade
	LFO2Rate
	LFO2PitchDepth
	LFO2FilterDepth
	LFO2AmpDepth

	// Effects
	ToneCtrlBass
	ToneCtrlTreble
	MultiFXLevel
	DelayTime
	DelayFeedback
	DelayLevel

	// Control
	PortamentoTime
	PortamentoSwitch
	Hold1
	Modulation
	Expression
	Pan

	// Count is the number of catalog entries.
	Count int = iota
)

// Keys of the routing/patch settings. They are not catalog parameters (they
// are never diffed per value) but share the key namespace in saved blobs.
const (
	KeyChannel = "midi_channel"
	KeyBank    = "patch_bank"
	KeyProgram = "patch_program"
)

// Section groups parameters the way the hardware front panel does.
type Section int

const (
	SectionOscillator Section = iota
	SectionPitchEnv
	SectionFilter
	SectionAmplifier
	SectionLFO
	SectionEffects
	SectionControl
	NumSections
)

var sectionNames = [NumSections]string{
	"OSCILLATOR",
	"PITCH ENV",
	"FILTER",
	"AMPLIFIER",
	"LFO",
	"EFFECTS",
	"CONTROL",
}

func (s Section) String() string {
	if s < 0 || s >= NumSections {
		return "UNKNOWN"
	}
	return sectionNames[s]
}

// EncodingKind tags how a parameter travels on the wire.
type EncodingKind int

const (
	ContinuousController EncodingKind = iota
	SysExChoice
)

// Encoding is the wire encoding of one parameter. CC is meaningful for
// ContinuousController, Address (the DT1 offset within the part block) for
// SysExChoice.
type Encoding struct {
	Kind    EncodingKind
	CC      uint8
	Address byte
}

// Param describes one catalog entry.
type Param struct {
	ID       ID
	Key      string
	Name     string
	Section  Section
	Encoding Encoding
	Options  []string // choice parameters only
	Default  float64  // normalized for CC, option index for choices
}

// IsChoice reports whether the parameter carries an option index rather than
// a normalized value.
func (p *Param) IsChoice() bool {
	return p.Encoding.Kind == SysExChoice
}

func cc(id ID, key, name string, sec Section, num uint8) Param {
	return Param{
		ID:       id,
		Key:      key,
		Name:     name,
		Section:  sec,
		Encoding: Encoding{Kind: ContinuousController, CC: num},
		Default:  0.5,
	}
}

func choice(id ID, key, name string, sec Section, addr byte, options ...string) Param {
	return Param{
		ID:       id,
		Key:      key,
		Name:     name,
		Section:  sec,
		Encoding: Encoding{Kind: SysExChoice, Address: addr},
		Options:  options,
	}
}

// Controls that default to off rather than centre.
func off(p Param) Param {
	p.Default = 0
	return p
}

var table = [Count]Param{
	choice(Osc1Waveform, "osc1_waveform", "OSC1 Waveform", SectionOscillator, 0x1E,
		"SUPER SAW", "TRIANGLE MOD", "NOISE", "FEEDBACK OSC", "SQR (PWM)", "SAW", "TRI"),
	cc(Osc1Control1, "osc1_control1", "OSC1 Control 1", SectionOscillator, 4),
	cc(Osc1Control2, "osc1_control2", "OSC1 Control 2", SectionOscillator, 76),
	choice(Osc2Waveform, "osc2_waveform", "OSC2 Waveform", SectionOscillator, 0x21,
		"SQR (PWM)", "SAW", "TRI", "NOISE"),
	cc(Osc2Range, "osc2_range", "OSC2 Range", SectionOscillator, 21),
	cc(Osc2FineWide, "osc2_fine_wide", "OSC2 Fine/Wide", SectionOscillator, 77),
	cc(Osc2Control1, "osc2_control1", "OSC2 Control 1", SectionOscillator, 78),
	cc(Osc2Control2, "osc2_control2", "OSC2 Control 2", SectionOscillator, 79),
	cc(OscBalance, "osc_balance", "OSC Balance", SectionOscillator, 8),
	cc(XModDepth, "xmod_depth", "X-Mod Depth", SectionOscillator, 70),
	cc(OscLFO1Depth, "osc_lfo1_depth", "OSC LFO1 Depth", SectionOscillator, 18),

	cc(PitchEnvDepth, "pitch_env_depth", "Pitch Env Depth", SectionPitchEnv, 25),
	cc(PitchEnvAttack, "pitch_env_attack", "Pitch Env Attack", SectionPitchEnv, 26),
	cc(PitchEnvDecay, "pitch_env_decay", "Pitch Env Decay", SectionPitchEnv, 27),

	cc(FilterCutoff, "filter_cutoff", "Filter Cutoff", SectionFilter, 74),
	cc(FilterResonance, "filter_resonance", "Filter Resonance", SectionFilter, 71),
	cc(FilterKeyFollow, "filter_key_follow", "Filter Key Follow", SectionFilter, 30),
	cc(FilterLFO1Depth, "filter_lfo1_depth", "Filter LFO1 Depth", SectionFilter, 19),
	cc(FilterEnvDepth, "filter_env_depth", "Filter Env Depth", SectionFilter, 81),
	cc(FilterEnvAttack, "filter_env_attack", "Filter Env Attack", SectionFilter, 82),
	cc(FilterEnvDecay, "filter_env_decay", "Filter Env Decay", SectionFilter, 83),
	cc(FilterEnvSustain, "filter_env_sustain", "Filter Env Sustain", SectionFilter, 28),
	cc(FilterEnvRelease, "filter_env_release", "Filter Env Release", SectionFilter, 29),

	cc(AmpLevel, "amp_level", "Amp Level", SectionAmplifier, 7),
	cc(AmpLFO1Depth, "amp_lfo1_depth", "Amp LFO1 Depth", SectionAmplifier, 80),
	cc(AmpEnvAttack, "amp_env_attack", "Amp Env Attack", SectionAmplifier, 73),
	cc(AmpEnvDecay, "amp_env_decay", "Amp Env Decay", SectionAmplifier, 75),
	cc(AmpEnvSustain, "amp_env_sustain", "Amp Env Sustain", SectionAmplifier, 31),
	cc(AmpEnvRelease, "amp_env_release", "Amp Env Release", SectionAmplifier, 72),

	choice(LFO1Waveform, "lfo1_waveform", "LFO1 Waveform", SectionLFO, 0x10,
		"TRI", "SAW", "SQR", "S/H"),
	cc(LFO1Rate, "lfo1_rate", "LFO1 Rate", SectionLFO, 16),
	cc(LFO1Fade, "lfo1_fade", "LFO1 Fade", SectionLFO, 20),
	cc(LFO2Rate, "lfo2_rate", "LFO2 Rate", SectionLFO, 17),
	cc(LFO2PitchDepth, "lfo2_pitch_depth", "LFO2 Pitch Depth", SectionLFO, 22),
	cc(LFO2FilterDepth, "lfo2_filter_depth", "LFO2 Filter Depth", SectionLFO, 23),
	cc(LFO2AmpDepth, "lfo2_amp_depth", "LFO2 Amp Depth", SectionLFO, 24),

	cc(ToneCtrlBass, "tone_ctrl_bass", "Tone Control Bass", SectionEffects, 92),
	cc(ToneCtrlTreble, "tone_ctrl_treble", "Tone Control Treble", SectionEffects, 95),
	cc(MultiFXLevel, "multi_fx_level", "Multi-FX Level", SectionEffects, 93),
	cc(DelayTime, "delay_time", "Delay Time", SectionEffects, 12),
	cc(DelayFeedback, "delay_feedback", "Delay Feedback", SectionEffects, 13),
	cc(DelayLevel, "delay_level", "Delay Level", SectionEffects, 94),

	cc(PortamentoTime, "portamento_time", "Portamento Time", SectionControl, 5),
	off(cc(PortamentoSwitch, "portamento_switch", "Portamento Switch", SectionControl, 65)),
	off(cc(Hold1, "hold1", "Hold 1 (Sustain)", SectionControl, 64)),
	off(cc(Modulation, "modulation", "Modulation", SectionControl, 1)),
	cc(Expression, "expression", "Expression", SectionControl, 11),
	cc(Pan, "pan", "Pan", SectionControl, 10),
}

var (
	byKey     map[string]ID
	byCC      map[uint8]ID
	byAddress map[byte]ID
	bySection [NumSections][]ID
)

func init() {
	byKey = make(map[string]ID, Count)
	byCC = make(map[uint8]ID, Count)
	byAddress = make(map[byte]ID)
	for i := range table {
		p := &table[i]
		byKey[p.Key] = p.ID
		switch p.Encoding.Kind {
		case ContinuousController:
			byCC[p.Encoding.CC] = p.ID
		case SysExChoice:
			byAddress[p.Encoding.Address] = p.ID
		}
		bySection[p.Section] = append(bySection[p.Section], p.ID)
	}
}

// Get returns the catalog entry for id, or nil if id is out of range.
// The returned entry is shared and must not be modified.
func Get(id ID) *Param {
	if id < 0 || int(id) >= Count {
		return nil
	}
	return &table[id]
}

// All returns the catalog in ID order. Callers must not modify it.
func All() []Param {
	return table[:]
}

// ByKey looks up a parameter by its stable string key.
func ByKey(key string) (ID, bool) {
	id, ok := byKey[key]
	return id, ok
}

// ByCC looks up the CC-encoded parameter using controller number cc.
func ByCC(cc uint8) (ID, bool) {
	id, ok := byCC[cc]
	return id, ok
}

// ByAddress looks up the SysEx-encoded parameter at DT1 offset addr.
func ByAddress(addr byte) (ID, bool) {
	id, ok := byAddress[addr]
	return id, ok
}

// InSection returns the IDs of a panel section in catalog order.
func InSection(s Section) []ID {
	if s < 0 || s >= NumSections {
		return nil
	}
	return bySection[s]
}

func (id ID) String() string {
	if p := Get(id); p != nil {
		return p.Key
	}
	return "unknown"
}
