// Package classify tags keywords with the product dimension they talk about.
package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is a keyword facet.
type Dimension string

const (
	DimensionScene    Dimension = "scene"
	DimensionFunction Dimension = "function"
	DimensionMaterial Dimension = "material"
	DimensionFit      Dimension = "fit"
	DimensionDesign   Dimension = "design"
	DimensionOther    Dimension = "other"
)

// Entry is one dimension's trigger words.
type Entry struct {
	Dimension Dimension `yaml:"dimension" json:"dimension"`
	Triggers  []string  `yaml:"triggers" json:"triggers"`
}

// Vocabulary is evaluated in order; the first matching entry wins.
type Vocabulary []Entry

// DefaultVocabulary returns the built-in apparel vocabulary in priority order.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		{DimensionScene, []string{"通勤", "户外", "露营", "运动", "居家", "度假", "约会", "旅行", "徒步", "commute", "outdoor", "camping", "office", "travel", "gym", "vacation", "hiking"}},
		{DimensionFunction, []string{"防晒", "防水", "保暖", "速干", "透气", "防风", "抗皱", "凉感", "sun protection", "uv", "waterproof", "warm", "quick dry", "breathable", "windproof", "cooling"}},
		{DimensionMaterial, []string{"棉", "亚麻", "羊毛", "真丝", "羊绒", "牛仔", "皮革", "醋酸", "cotton", "linen", "wool", "silk", "cashmere", "denim", "leather", "nylon"}},
		{DimensionFit, []string{"宽松", "修身", "阔腿", "直筒", "高腰", "短款", "oversize", "slim", "wide leg", "straight", "high waist", "loose", "cropped"}},
		{DimensionDesign, []string{"碎花", "条纹", "格纹", "印花", "刺绣", "蕾丝", "撞色", "复古", "floral", "stripe", "plaid", "print", "embroidery", "lace", "vintage"}},
	}
}

// LoadVocabulary reads a YAML list of {dimension, triggers} entries. List
// order is kept and becomes the match priority.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classify: read vocabulary: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("classify: parse vocabulary: %w", err)
	}
	for i, e := range v {
		if strings.TrimSpace(string(e.Dimension)) == "" {
			return nil, fmt.Errorf("classify: entry %d has no dimension", i)
		}
	}
	return v, nil
}

// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	entries []Entry
}

// New builds a Classifier over a lowercased copy of v. A nil v uses DefaultVocabulary.
func New(v Vocabulary) *Classifier {
	if v == nil {
		v = DefaultVocabulary()
	}
	c := &Classifier{entries: make([]Entry, 0, len(v))}
	for _, e := range v {
		triggers := make([]string, 0, len(e.Triggers))
		for _, t := range e.Triggers {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				triggers = append(triggers, t)
			}
		}
		c.entries = append(c.entries, Entry{Dimension: e.Dimension, Triggers: triggers})
	}
	return c
}

// Classify returns the first dimension with a trigger that contains, or is
// contained in, the keyword (case-insensitive). No match yields DimensionOther.
func (c *Classifier) Classify(keyword string) Dimension {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return DimensionOther
	}
	for _, e := range c.entries {
		for _, t := range e.Triggers {
			if strings.Contains(kw, t) || strings.Contains(t, kw) {
				return e.Dimension
			}
		}
	}
	return DimensionOther
}

// ClassifyAll maps each keyword to its dimension.
func (c *Classifier) ClassifyAll(keywords []string) map[string]Dimension {
	out := make(map[string]Dimension, len(keywords))
	for _, k := range keywords {
		out[k] = c.Classify(k)
	}
	return out
}
