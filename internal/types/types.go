package types

import (
	"errors"
	"fmt"
	"strings"
)

// MaxRoster is the number of characters a roster may hold.
const MaxRoster = 5

type AgeBracket string

const (
	AgeTeens     AgeBracket = "10代"
	AgeTwenties  AgeBracket = "20代"
	AgeThirties  AgeBracket = "30代"
	AgeForties   AgeBracket = "40代"
	AgeFifties   AgeBracket = "50代"
	AgeSixtiesUp AgeBracket = "60代以上"
)

var AgeBrackets = []AgeBracket{AgeTeens, AgeTwenties, AgeThirties, AgeForties, AgeFifties, AgeSixtiesUp}

type Gender string

const (
	GenderMale   Gender = "男性"
	GenderFemale Gender = "女性"
	GenderOther  Gender = "その他"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Character is one cast member. The JSON layout matches characters.json.
type Character struct {
	Name       string     `json:"name"`
	Age        AgeBracket `json:"age"`
	Gender     Gender     `json:"gender"`
	Appearance string     `json:"appearance"`
	Atmosphere string     `json:"atmosphere"`
	Background string     `json:"background"`
	Tone       string     `json:"tone"`
}

// Normalize trims every free-text attribute.
func (c Character) Normalize() Character {
	c.Name = strings.TrimSpace(c.Name)
	c.Appearance = strings.TrimSpace(c.Appearance)
	c.Atmosphere = strings.TrimSpace(c.Atmosphere)
	c.Background = strings.TrimSpace(c.Background)
	c.Tone = strings.TrimSpace(c.Tone)
	return c
}

func (c Character) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is empty")
	}
	if c.Age != "" && !validAge(c.Age) {
		return fmt.Errorf("unknown age bracket %q", c.Age)
	}
	if c.Gender != "" && !validGender(c.Gender) {
		return fmt.Errorf("unknown gender %q", c.Gender)
	}
	return nil
}

func validAge(a AgeBracket) bool {
	for _, v := range AgeBrackets {
		if v == a {
			return true
		}
	}
	return false
}

func validGender(g Gender) bool {
	for _, v := range Genders {
		if v == g {
			return true
		}
	}
	return false
}

// TemplateConfig is the persisted pair of lead templates and closing text.
type TemplateConfig struct {
	LeadTemplates string `json:"lead_templates"`
	ClosingText   string `json:"closing_text"`
}

func DefaultTemplates() TemplateConfig {
	return TemplateConfig{LeadTemplates: defaultLeadTemplates, ClosingText: defaultClosingText}
}

const defaultClosingText = `詳しく知りたい人は、
このアカウントをフォロー、
画面のようにタップし、
リンクから、
1分でできる無料診断を、
受けてみてください。`

const defaultLeadTemplates = `・今の仕事で問題を抱えている人へ。早めの行動があなたを守るかもしれません。退職を考えている人は、退職給付金の活用でお金の問題は解決できる場合があります。最大400万円以上受け取っている人もいる国の制度があります。

・社会保険に1年以上加入していれば最大28ヶ月の給付が可能。平均支給額は450万円以上。これを逃すのはもったいないです。ただ、申請がちょっと難しいのと退職前に準備を始めないといけないのが難点。制度を知らず損してしまう人は本当に多いんです。自分が対象かどうか気になる人はまずはいくらもらえるか確認してみてください。

・退職前に申請すれば400万以上受け取れる給付金制度があるのをご存知ですか。ですが申請方法を知らずに損している人が多数。あなたには損をしてほしくないのでこのアカウントをフォローして教えてとコメントしてください。

・賢く退職する人はみんな制度を味方にしています。400万以上もらえる可能性のある国の制度。しかし申請ミスや期限切れでチャンスを逃す人も多いです。正しい申請方法を知りたい人はこのアカウントをフォローしてプロフのリンクから1分の無料診断を受けてみてください。

・今の生活が不安な方は制度を正しく知ることが大切です。もしあなたが65歳未満なら28ヶ月受給できる給付制度もあります。

・退職後の生活が不安な方へ。

・「自分はどれに当てはまりそうか」「退職前に何をしておくべきか」を知りたい場合は。

・「次が決まっていないのにお金がない」という不安は、焦りを生み、ブラック企業への誤入社を招くリスクがあります。しかし、会社を辞めた後に使える国の公的制度をフル活用すれば、数ヶ月から1年は生活費の心配を減らすことが可能です。経済的な余裕は、精神的な「盾」となります。目先の生活に追われず、じっくり会社を見極める時間を確保することで、変な会社に捕まらずに納得のいく再就職を目指せます。`

type Politeness string

const (
	PolitenessUnset  Politeness = ""
	PolitenessCasual Politeness = "casual"
	PolitenessPolite Politeness = "polite"
	PolitenessFormal Politeness = "formal"
)

type Emotion string

const (
	EmotionUnset  Emotion = ""
	EmotionGentle Emotion = "gentle"
	EmotionStrong Emotion = "strong"
	EmotionCool   Emotion = "cool"
)

type Style string

const (
	StyleUnset          Style = ""
	StyleExplanatory    Style = "explanatory"
	StyleConversational Style = "conversational"
	StyleNarrative      Style = "narrative"
)

const (
	MinPages          = 5
	MaxPages          = 40
	DefaultPages      = 15
	MinVariations     = 1
	MaxVariations     = 3
	DefaultVariations = 1
)

// RewriteOptions tunes one rewrite request. It is rebuilt for every call.
type RewriteOptions struct {
	Politeness        Politeness `json:"politeness,omitempty"`
	Emotion           Emotion    `json:"emotion,omitempty"`
	Style             Style      `json:"style,omitempty"`
	CustomInstruction string     `json:"custom_instruction,omitempty"`
	NumPages          int        `json:"num_pages,omitempty"`
	NumVariations     int        `json:"num_variations,omitempty"`
}

// WithDefaults fills zero page and variation counts.
func (o RewriteOptions) WithDefaults() RewriteOptions {
	if o.NumPages == 0 {
		o.NumPages = DefaultPages
	}
	if o.NumVariations == 0 {
		o.NumVariations = DefaultVariations
	}
	return o
}

func (o RewriteOptions) Validate() error {
	switch o.Politeness {
	case PolitenessUnset, PolitenessCasual, PolitenessPolite, PolitenessFormal:
	default:
		return fmt.Errorf("unknown politeness %q", o.Politeness)
	}
	switch o.Emotion {
	case EmotionUnset, EmotionGentle, EmotionStrong, EmotionCool:
	default:
		return fmt.Errorf("unknown emotion %q", o.Emotion)
	}
	switch o.Style {
	case StyleUnset, StyleExplanatory, StyleConversational, StyleNarrative:
	default:
		return fmt.Errorf("unknown style %q", o.Style)
	}
	if o.NumPages < MinPages || o.NumPages > MaxPages {
		return fmt.Errorf("pages must be in [%d,%d], got %d", MinPages, MaxPages, o.NumPages)
	}
	if o.NumVariations < MinVariations || o.NumVariations > MaxVariations {
		return fmt.Errorf("variations must be in [%d,%d], got %d", MinVariations, MaxVariations, o.NumVariations)
	}
	return nil
}

// Manifest describes one non-interactive run written to disk.
type Manifest struct {
	ID        string          `json:"id"`
	Input     string          `json:"input"`
	Kind      string          `json:"kind"`
	Filename  string          `json:"filename"`
	Stage     string          `json:"stage"`
	Cast      []string        `json:"cast"`
	Options   RewriteOptions  `json:"options"`
	Artifacts []ManifestEntry `json:"artifacts"`
}

type ManifestEntry struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Bytes int    `json:"bytes"`
}
