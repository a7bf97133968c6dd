package config

const (
	defaultPolicy            = "stretch"
	defaultPaddingSeconds    = 0.1
	defaultStretchTolerance  = 0.08
	defaultSlotHeadMS        = 70
	defaultSlotTailMS        = 120
	defaultSlotOverflowMS    = 220
	defaultSlotFadeMS        = 40
	defaultSampleRate        = 22050
	defaultDuckingDB         = -6.0
	defaultMusicGainDB       = -2.0
	defaultVoiceGainDB       = 0.0
	defaultSynthBackend      = "clips"
	defaultSpeaker           = "neutral_female"
	defaultLengthScale       = 1.0
	defaultNoiseScale        = 0.667
	defaultNoiseScaleW       = 0.8
	defaultSynthRetries      = 2
	defaultSynthTimeout      = 120
	defaultSynthConcurrency  = 2
	defaultCacheFile         = "clips.db"
	defaultRenderBatchSize   = 16
	defaultFFmpegBinary      = "ffmpeg"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultSubstituteSilence = true
)

// Default returns a Config populated with engine defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
		},
		Align: Align{
			Policy:           defaultPolicy,
			PaddingSeconds:   defaultPaddingSeconds,
			StretchTolerance: defaultStretchTolerance,
			SlotFit: SlotFit{
				HeadMS:     defaultSlotHeadMS,
				TailMS:     defaultSlotTailMS,
				OverflowMS: defaultSlotOverflowMS,
				FadeMS:     defaultSlotFadeMS,
			},
		},
		Mixer: Mixer{
			SampleRate:  defaultSampleRate,
			DuckingDB:   defaultDuckingDB,
			MusicGainDB: defaultMusicGainDB,
			VoiceGainDB: defaultVoiceGainDB,
		},
		Synth: Synth{
			Backend:        defaultSynthBackend,
			Speaker:        defaultSpeaker,
			LengthScale:    defaultLengthScale,
			NoiseScale:     defaultNoiseScale,
			NoiseScaleW:    defaultNoiseScaleW,
			Retries:        defaultSynthRetries,
			TimeoutSeconds: defaultSynthTimeout,
			Concurrency:    defaultSynthConcurrency,
		},
		Render: Render{
			SubstituteSilence: defaultSubstituteSilence,
			BatchSize:         defaultRenderBatchSize,
			FFmpegBinary:      defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
