package tools

import (
	"math"
	"strconv"
)

// Calculator argument keys.
const (
	OperandKey   = "operand"
	Operator1Key = "operator_1"
	Operator2Key = "operator_2"
)

var operations = map[string]func(x, y float64) float64{
	"+": func(x, y float64) float64 { return x + y },
	"-": func(x, y float64) float64 { return x - y },
	"*": func(x, y float64) float64 { return x * y },
	"/": func(x, y float64) float64 {
		if y == 0 {
			return math.Inf(1)
		}
		return x / y
	},
	"%": func(x, y float64) float64 { return (x / 100) * y },
}

// Calculator applies one of the five arithmetic operands to two numbers.
type Calculator struct{}

// NewCalculator creates a calculator tool.
func NewCalculator() *Calculator {
	return &Calculator{}
}

func (c *Calculator) Name() Name {
	return CalculatorName
}

func (c *Calculator) Description() string {
	return "Evaluate a single arithmetic operation on two numbers. " +
		"Use operand '%' for percentages: '12.5% of 243' is operand '%', operator_1 12.5, operator_2 243."
}

func (c *Calculator) Parameters() map[string]any {
	return objectSchema(map[string]any{
		OperandKey: map[string]any{
			"type":        "string",
			"description": "The operation to perform",
			"enum":        []string{"+", "-", "*", "/", "%"},
		},
		Operator1Key: numberProperty("The first number"),
		Operator2Key: numberProperty("The second number"),
	}, OperandKey, Operator1Key, Operator2Key)
}

// Run evaluates args and renders the outcome. Validation failures come back
// as text, so Run never fails.
func (c *Calculator) Run(args map[string]any) string {
	result, err := Calculate(args)
	if err != nil {
		return "Invalid values: " + err.Error()
	}
	return strconv.FormatFloat(result, 'f', -1, 64)
}

// Calculate validates args field by field and applies the operand.
// Division by zero yields +Inf.
func Calculate(args map[string]any) (float64, error) {
	for _, key := range []string{OperandKey, Operator1Key, Operator2Key} {
		if !present(args, key) {
			return 0, validationf("Missing required field: %s", key)
		}
	}

	operand, _ := args[OperandKey].(string)
	op, ok := operations[operand]
	if !ok {
		return 0, validationf("Invalid operand: %s", describeValue(args[OperandKey]))
	}

	x, ok := toFloat(args[Operator1Key])
	if !ok {
		return 0, validationf("Invalid number for %s: %s", Operator1Key, describeValue(args[Operator1Key]))
	}
	y, ok := toFloat(args[Operator2Key])
	if !ok {
		return 0, validationf("Invalid number for %s: %s", Operator2Key, describeValue(args[Operator2Key]))
	}

	return op(x, y), nil
}
