package app

import (
	"github.com/vk/cueflow/internal/registry"
	"github.com/vk/cueflow/modules/amplification"
	"github.com/vk/cueflow/modules/audioinput"
	"github.com/vk/cueflow/modules/butterworth"
	"github.com/vk/cueflow/modules/convolutionreverb"
	"github.com/vk/cueflow/modules/equalizer"
	"github.com/vk/cueflow/modules/filter"
	"github.com/vk/cueflow/modules/midiinput"
	"github.com/vk/cueflow/modules/mixer"
	"github.com/vk/cueflow/modules/parameter"
	"github.com/vk/cueflow/modules/sine"
	"github.com/vk/cueflow/modules/value"
	"github.com/vk/cueflow/modules/waveguidereverb"
)

// coreModules is the definitive list of all module types that are compiled
// into the cueflow binary.
var coreModules = []registry.Module{
	&value.Module{},
	&parameter.Module{},
	&midiinput.Module{},
	&sine.Module{},
	&audioinput.Module{},
	&amplification.Module{},
	&filter.Module{},
	&butterworth.Module{},
	&equalizer.Module{},
	&convolutionreverb.Module{},
	&waveguidereverb.Module{},
	&mixer.Module{},
}
