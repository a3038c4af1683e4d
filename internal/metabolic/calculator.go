// Package metabolic estimates basal (TMB) and total (GET) energy expenditure with the revised
// Harris-Benedict equations.
package metabolic

import (
	"fmt"
	"strings"

	"bassinifit/coach-app/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	maleBase   = decimal.RequireFromString("88.362")
	maleWeight = decimal.RequireFromString("13.397")
	maleHeight = decimal.RequireFromString("4.799")
	maleAge    = decimal.RequireFromString("5.677")

	femaleBase   = decimal.RequireFromString("447.593")
	femaleWeight = decimal.RequireFromString("9.247")
	femaleHeight = decimal.RequireFromString("3.098")
	femaleAge    = decimal.RequireFromString("4.330")
)

var activityFactors = map[domain.ActivityLevel]decimal.Decimal{
	domain.ActivitySedentary:   decimal.RequireFromString("1.2"),
	domain.ActivityLight:       decimal.RequireFromString("1.375"),
	domain.ActivityModerate:    decimal.RequireFromString("1.55"),
	domain.ActivityIntense:     decimal.RequireFromString("1.725"),
	domain.ActivityVeryIntense: decimal.RequireFromString("1.9"),
}

// ActivityFactor returns the GET multiplier for level.
func ActivityFactor(level domain.ActivityLevel) (decimal.Decimal, bool) {
	f, ok := activityFactors[level]
	return f, ok
}

// Input holds the raw form values. Numbers arrive as text, the way the trainer typed them.
type Input struct {
	Weight        string               `json:"weight"` // kg
	Height        string               `json:"height"` // cm
	Age           string               `json:"age"`    // years
	Sex           domain.Sex           `json:"sex"`
	ActivityLevel domain.ActivityLevel `json:"activityLevel"`
}

// Biometrics are the parsed inputs.
type Biometrics struct {
	WeightKG      decimal.Decimal
	HeightCM      decimal.Decimal
	Age           int
	Sex           domain.Sex
	ActivityLevel domain.ActivityLevel
}

// Result is a finished calculation. TMB and GET are whole kcal/day.
type Result struct {
	Biometrics Biometrics `json:"-"`
	TMB        int64      `json:"tmb"`
	GET        int64      `json:"get"`
}

// InputError names the fields that kept the calculation from running.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"weight", "height", "age", "sex", "activityLevel"} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return "invalid metabolic input: " + strings.Join(parts, "; ")
}

// Parse validates in. Weight, height and age must be present, numeric and greater than zero. Age
// is in whole years.
func Parse(in Input) (Biometrics, error) {
	fields := map[string]string{}
	weight := positive(in.Weight, "weight", fields)
	height := positive(in.Height, "height", fields)
	age := positive(in.Age, "age", fields)
	if _, bad := fields["age"]; !bad && !age.Equal(age.Truncate(0)) {
		fields["age"] = "must be a whole number of years"
	}
	if !in.Sex.Valid() {
		fields["sex"] = fmt.Sprintf("must be %q or %q", domain.SexMale, domain.SexFemale)
	}
	if !in.ActivityLevel.Valid() {
		fields["activityLevel"] = "unknown activity level"
	}
	if len(fields) > 0 {
		return Biometrics{}, &InputError{Fields: fields}
	}
	return Biometrics{
		WeightKG:      weight,
		HeightCM:      height,
		Age:           int(age.IntPart()),
		Sex:           in.Sex,
		ActivityLevel: in.ActivityLevel,
	}, nil
}

func positive(raw, field string, fields map[string]string) decimal.Decimal {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		fields[field] = "required"
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		fields[field] = "not a number"
		return decimal.Zero
	}
	if !d.IsPositive() {
		fields[field] = "must be greater than zero"
	}
	return d
}

// Compute runs the equations on parsed biometrics. GET is taken from the unrounded TMB.
func Compute(b Biometrics) Result {
	age := decimal.NewFromInt(int64(b.Age))
	var tmb decimal.Decimal
	if b.Sex == domain.SexMale {
		tmb = maleBase.Add(maleWeight.Mul(b.WeightKG)).Add(maleHeight.Mul(b.HeightCM)).Sub(maleAge.Mul(age))
	} else {
		tmb = femaleBase.Add(femaleWeight.Mul(b.WeightKG)).Add(femaleHeight.Mul(b.HeightCM)).Sub(femaleAge.Mul(age))
	}
	get := tmb.Mul(activityFactors[b.ActivityLevel])
	return Result{
		Biometrics: b,
		TMB:        tmb.Round(0).IntPart(),
		GET:        get.Round(0).IntPart(),
	}
}

// Calculate parses in and computes the result.
func Calculate(in Input) (Result, error) {
	b, err := Parse(in)
	if err != nil {
		return Result{}, err
	}
	return Compute(b), nil
}
