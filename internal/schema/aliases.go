package schema

import (
	"fmt"
	"os"

	"github.com/vinodismyname/buzzlens/internal/model"
	"gopkg.in/yaml.v3"
)

// Aliases holds the two lookup tables consulted by the Resolver.
// Exact is keyed by literal header spellings as they appear in source files;
// Normalized is keyed by the output of Normalize.
type Aliases struct {
	Exact      map[string]model.Field `yaml:"exact"`
	Normalized map[string]model.Field `yaml:"normalized"`
}

// channel prefixes as they appear in exported workbooks
const (
	channelA = "小红书"
	channelB = "抖音"
)

var refMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// DefaultAliases returns a fresh copy of the built-in header spellings.
//
// Every "<channel>-SEARCH vs.<Mon>" variant collapses onto the same *_vs_ref
// field: workbooks compare against different reference months and the
// dashboard treats them as one column.
func DefaultAliases() Aliases {
	exact := map[string]model.Field{
		"年份": model.FieldYear, "年": model.FieldYear, "Year": model.FieldYear, "YEAR": model.FieldYear,
		"月份": model.FieldMonth, "月": model.FieldMonth, "Month": model.FieldMonth, "MONTH": model.FieldMonth,
		"品类": model.FieldCategory, "类目": model.FieldCategory, "大类": model.FieldCategory, "Category": model.FieldCategory,
		"关键词": model.FieldKeyword, "关键字": model.FieldKeyword, "Keyword": model.FieldKeyword, "KEYWORD": model.FieldKeyword,

		channelA + "-BUZZ": model.FieldBuzzChannelA, channelA + " Buzz": model.FieldBuzzChannelA, "RED Buzz": model.FieldBuzzChannelA,
		channelB + "-BUZZ": model.FieldBuzzChannelB, channelB + " Buzz": model.FieldBuzzChannelB, "Douyin Buzz": model.FieldBuzzChannelB,
		"TTL Buzz": model.FieldBuzzTotal, "TTL_Buzz": model.FieldBuzzTotal, "Total Buzz": model.FieldBuzzTotal, "总声量": model.FieldBuzzTotal,
		"TTL Buzz YOY": model.FieldBuzzYoY, "同比": model.FieldBuzzYoY,
		"TTL Buzz MOM": model.FieldBuzzMoM, "环比": model.FieldBuzzMoM,

		channelA + "-SEARCH": model.FieldSearchChannelA, channelA + "搜索": model.FieldSearchChannelA,
		channelB + "-SEARCH": model.FieldSearchChannelB, channelB + "搜索": model.FieldSearchChannelB,

		"象限": model.FieldQuadrant, "Quadrant": model.FieldQuadrant, "QUADRANT": model.FieldQuadrant,
	}
	for _, m := range []string{"Jul", "Dec"} {
		exact[channelA+"-SEARCH vs."+m] = model.FieldSearchChannelAVsRef
		exact[channelB+"-SEARCH vs."+m] = model.FieldSearchChannelBVsRef
	}

	normalized := map[string]model.Field{
		"YEAR": model.FieldYear, "年份": model.FieldYear, "年": model.FieldYear,
		"MONTH": model.FieldMonth, "月份": model.FieldMonth, "月": model.FieldMonth,
		"CATEGORY": model.FieldCategory, "品类": model.FieldCategory, "类目": model.FieldCategory, "大类": model.FieldCategory,
		"KEYWORD": model.FieldKeyword, "KEYWORDS": model.FieldKeyword, "关键词": model.FieldKeyword, "关键字": model.FieldKeyword,

		channelA + "BUZZ": model.FieldBuzzChannelA, "REDBUZZ": model.FieldBuzzChannelA, "XHSBUZZ": model.FieldBuzzChannelA,
		channelB + "BUZZ": model.FieldBuzzChannelB, "DOUYINBUZZ": model.FieldBuzzChannelB, "DYBUZZ": model.FieldBuzzChannelB,
		"TTLBUZZ": model.FieldBuzzTotal, "TOTALBUZZ": model.FieldBuzzTotal, "总声量": model.FieldBuzzTotal,
		"同比": model.FieldBuzzYoY,
		"环比": model.FieldBuzzMoM,

		channelA + "SEARCH": model.FieldSearchChannelA, "REDSEARCH": model.FieldSearchChannelA, "XHSSEARCH": model.FieldSearchChannelA,
		channelB + "SEARCH": model.FieldSearchChannelB, "DOUYINSEARCH": model.FieldSearchChannelB, "DYSEARCH": model.FieldSearchChannelB,

		"QUADRANT": model.FieldQuadrant, "象限": model.FieldQuadrant,
	}
	for _, m := range refMonths {
		mon := Normalize(m)
		for _, prefix := range []string{channelA, "RED", "XHS"} {
			normalized[Normalize(prefix)+"SEARCHVS"+mon] = model.FieldSearchChannelAVsRef
		}
		for _, prefix := range []string{channelB, "DOUYIN", "DY"} {
			normalized[Normalize(prefix)+"SEARCHVS"+mon] = model.FieldSearchChannelBVsRef
		}
	}
	return Aliases{Exact: exact, Normalized: normalized}
}

// Merge returns a copy of a with every entry of o layered on top.
func (a Aliases) Merge(o Aliases) Aliases {
	out := Aliases{
		Exact:      make(map[string]model.Field, len(a.Exact)+len(o.Exact)),
		Normalized: make(map[string]model.Field, len(a.Normalized)+len(o.Normalized)),
	}
	for k, v := range a.Exact {
		out.Exact[k] = v
	}
	for k, v := range o.Exact {
		out.Exact[k] = v
	}
	for k, v := range a.Normalized {
		out.Normalized[k] = v
	}
	// override keys are normalized on the way in so YAML authors can write them loosely
	for k, v := range o.Normalized {
		out.Normalized[Normalize(k)] = v
	}
	return out
}

// Validate rejects tables mapping onto unknown fields.
func (a Aliases) Validate() error {
	for k, f := range a.Exact {
		if !f.Valid() {
			return fmt.Errorf("schema: alias %q maps to unknown field %q", k, f)
		}
	}
	for k, f := range a.Normalized {
		if !f.Valid() {
			return fmt.Errorf("schema: normalized alias %q maps to unknown field %q", k, f)
		}
	}
	return nil
}

// LoadAliases reads an alias override file in YAML:
//
//	exact:
//	  "TTL Buzz": buzz_total
//	normalized:
//	  TTLBUZZ: buzz_total
func LoadAliases(path string) (Aliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Aliases{}, fmt.Errorf("schema: read aliases: %w", err)
	}
	var a Aliases
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Aliases{}, fmt.Errorf("schema: parse aliases: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Aliases{}, err
	}
	return a, nil
}
