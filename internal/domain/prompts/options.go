package prompts

import (
	"errors"
	"fmt"

	"github.com/forPelevin/scenarist/internal/types"
)

// ErrUnknownOption is returned for an option value with no description.
var ErrUnknownOption = errors.New("unknown rewrite option")

func politenessPhrase(p types.Politeness) (string, error) {
	switch p {
	case types.PolitenessCasual:
		return "カジュアルで親しみやすい口調（タメ口、くだけた表現）", nil
	case types.PolitenessPolite:
		return "丁寧で礼儀正しい口調（です・ます調）", nil
	case types.PolitenessFormal:
		return "フォーマルで格式高い口調（敬語、ビジネス調）", nil
	default:
		return "", fmt.Errorf("%w: politeness %q", ErrUnknownOption, p)
	}
}

func emotionPhrase(e types.Emotion) (string, error) {
	switch e {
	case types.EmotionGentle:
		return "優しく穏やかな雰囲気（柔らかい表現、共感的）", nil
	case types.EmotionStrong:
		return "力強く情熱的な雰囲気（断定的、エネルギッシュ）", nil
	case types.EmotionCool:
		return "クールで落ち着いた雰囲気（淡々と、客観的）", nil
	default:
		return "", fmt.Errorf("%w: emotion %q", ErrUnknownOption, e)
	}
}

func stylePhrase(s types.Style) (string, error) {
	switch s {
	case types.StyleExplanatory:
		return "説明的な話し方（論理的、順序立てて）", nil
	case types.StyleConversational:
		return "会話的な話し方（語りかける、問いかける）", nil
	case types.StyleNarrative:
		return "物語的な話し方（ストーリー調、引き込む）", nil
	default:
		return "", fmt.Errorf("%w: style %q", ErrUnknownOption, s)
	}
}

// toneLines renders one line per set option, in politeness, emotion, style order.
func toneLines(o types.RewriteOptions) ([]string, error) {
	var out []string
	if o.Politeness != types.PolitenessUnset {
		p, err := politenessPhrase(o.Politeness)
		if err != nil {
			return nil, err
		}
		out = append(out, "【丁寧度】"+p)
	}
	if o.Emotion != types.EmotionUnset {
		p, err := emotionPhrase(o.Emotion)
		if err != nil {
			return nil, err
		}
		out = append(out, "【感情】"+p)
	}
	if o.Style != types.StyleUnset {
		p, err := stylePhrase(o.Style)
		if err != nil {
			return nil, err
		}
		out = append(out, "【話し方】"+p)
	}
	return out, nil
}
