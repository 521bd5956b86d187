package display

// MelodyID names a built-in tune for the melody effect.
type MelodyID uint8

const (
	MelodyBoot MelodyID = iota
	MelodyTouch
	MelodyPoke
	MelodyClaim
	MelodyMute
	MelodyUnmute
)

// Op is an effect verb. The state machine emits effects; the task loop
// executes them against the screen, player, buzzer and network.
type Op uint8

const (
	OpShowText Op = iota + 1
	OpShowWifiSetup
	OpShowConnectedInfo
	OpShowClock
	OpShowPoke
	OpShowHistoryPoke
	OpMelody
	OpMelodyStop
	OpPlayerSeed    // build shuffle bag, enable auto-advance, start first file
	OpPlayerAdvance // jump to the next shuffled file and publish it
	OpToggleMute
	OpClaimConfirm
	OpClaimReject
	OpPublishTouch
	OpPublishMute
)

// Effect is one side effect. Fields are meaningful per Op: Lines for
// OpShowText, Text for claim user and touch names, Idx for history index,
// Flag for OpPublishMute, Melody for OpMelody.
type Effect struct {
	Op     Op
	Lines  [4]string
	Text   string
	Idx    int
	Flag   bool
	Melody MelodyID
}

func showText(l1, l2, l3, l4 string) Effect {
	return Effect{Op: OpShowText, Lines: [4]string{l1, l2, l3, l4}}
}

func play(id MelodyID) Effect { return Effect{Op: OpMelody, Melody: id} }
