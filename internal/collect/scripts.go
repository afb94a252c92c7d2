package collect

import (
	"regexp"

	"github.com/nao1215/privacygrade/internal/model"
)

// scriptPatterns are the API calls that count as fingerprinting signals
// when they appear in inline script source.
var scriptPatterns = map[model.Technique][]*regexp.Regexp{
	model.TechniqueCanvas: {
		regexp.MustCompile(`\.toDataURL\s*\(`),
		regexp.MustCompile(`\.getImageData\s*\(`),
	},
	model.TechniqueWebGL: {
		regexp.MustCompile(`UNMASKED_(VENDOR|RENDERER)_WEBGL`),
		regexp.MustCompile(`getParameter\s*\(\s*[\w.]*(RENDERER|VENDOR)`),
	},
	model.TechniqueAudio: {
		regexp.MustCompile(`\b(webkit|Offline)?AudioContext\s*\(`),
		regexp.MustCompile(`\.createOscillator\s*\(`),
		regexp.MustCompile(`\.createAnalyser\s*\(`),
	},
	model.TechniqueFonts: {
		regexp.MustCompile(`\.measureText\s*\(`),
		regexp.MustCompile(`\.fontFamily\s*=`),
	},
	model.TechniqueNavigator: {
		regexp.MustCompile(`navigator\.(plugins|mimeTypes|platform|userAgent|languages?|hardwareConcurrency|deviceMemory)\b`),
	},
	model.TechniqueScreen: {
		regexp.MustCompile(`screen\.(width|height|colorDepth|pixelDepth|availWidth|availHeight)\b`),
	},
	model.TechniqueTimezone: {
		regexp.MustCompile(`\.getTimezoneOffset\s*\(`),
		regexp.MustCompile(`resolvedOptions\s*\(\s*\)\s*\.\s*timeZone\b`),
	},
}

// scanScript adds one count per fingerprinting API call in src.
func scanScript(src string, counts map[model.Technique]int) {
	for technique, patterns := range scriptPatterns {
		for _, re := range patterns {
			if n := len(re.FindAllStringIndex(src, -1)); n > 0 {
				counts[technique] += n
			}
		}
	}
}
