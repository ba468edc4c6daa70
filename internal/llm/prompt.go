package llm

import (
	"strings"

	"github.com/lithammer/dedent"
)

// Turn is one message in the conversation sent to the model.
type Turn interface {
	isTurn()
}

// SystemTurn carries the fixed coaching instruction.
type SystemTurn struct {
	Instruction string
}

// UserTurn carries a single image for the model to analyze.
type UserTurn struct {
	ImageRef string
}

func (SystemTurn) isTurn() {}
func (UserTurn) isTurn()   {}

// Conversation is an ordered sequence of turns.
type Conversation []Turn

// coachInstruction is the answer shape requested from the model. It is
// instruction text only: the model is not forced to conform and the response
// is never parsed or validated against it.
var coachInstruction = strings.TrimSpace(dedent.Dedent(`
	You are an expert archery coach with a deep understanding of body form: how
	the archer holds the bow, the line and length of the arm, positioning at the
	face, back muscle engagement and so on. You will be given images of an archer
	from various perspectives and you have to analyze what is looking good and
	what is not. Explain in this format:

	What I see:
	Gender: <Male, Female, Cannot Determine>
	Wearing Top: <Yes, No, Not Visible> And If Yes, <COLOR> and <TYPE like Full Arm Shirt, Sleeveless Short, Tank Top etc>
	Wearing Bottom: <Yes, No, Not Visible> And If Yes, <COLOR> and <TYPE like Shorts, Jeans, Athletic Wear etc>
	Face Visible: <Yes or No>
	Back Visible: <Yes or No>
	Back Muscle Group Visible: <Yes or No>
	Arms Full Length Visible: <Yes or No>
	Right Foot Forward: <Yes, No, Not Visible>
	Left Foot Forward: <Yes, No, Not Visible>
	Stance: <stance>
	Archery Related: <Yes or No>
	Image Useful For Archery Analysis: <Yes or No>

	Expert Analysis: <Your Detailed Analysis>
`))

// CoachingConversation builds the two-turn prompt for one image. The
// instruction text is identical for every call; only the image reference
// varies.
func CoachingConversation(imagePath string) Conversation {
	return Conversation{
		SystemTurn{Instruction: coachInstruction},
		UserTurn{ImageRef: imagePath},
	}
}

// splitConversation separates a conversation into its system instruction and
// the image references of the user turns, in order.
func splitConversation(conv Conversation) (instruction string, imageRefs []string) {
	for _, turn := range conv {
		switch t := turn.(type) {
		case SystemTurn:
			instruction = t.Instruction
		case UserTurn:
			imageRefs = append(imageRefs, t.ImageRef)
		}
	}
	return instruction, imageRefs
}
