package embedded

import (
	_ "embed"
)

// Agent prompts
//
//go:embed data/prompts/planner_prompt.txt
var PlannerPromptTxt []byte

//go:embed data/prompts/visual_prompt.txt
var VisualPromptTxt []byte

//go:embed data/prompts/composer_prompt.txt
var ComposerPromptTxt []byte

//go:embed data/prompts/scriptwriter_prompt.txt
var ScriptwriterPromptTxt []byte

//go:embed data/prompts/director_prompt.txt
var DirectorPromptTxt []byte

//go:embed data/prompts/narrative_prompt.txt
var NarrativePromptTxt []byte

//go:embed data/prompts/output_format_instructions.txt
var OutputFormatInstructionsTxt []byte

// Keyword vocabulary used to retarget reviewer notes
//
//go:embed data/vocabulary.yaml
var VocabularyYAML []byte
