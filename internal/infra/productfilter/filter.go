// Package productfilter compiles catalog filter expressions such as
//
//	price < 20 && categoryType == "Books" && "Frank Herbert" in authors
//
// against a typed product environment.
package productfilter

import (
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra/cachemem"
	"storefront/internal/usecase"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const maxExpressionLength = 512

// Env is the data a filter expression can reference.
type Env struct {
	ID           string   `expr:"id"`
	Name         string   `expr:"name"`
	Category     string   `expr:"category"`
	Summary      string   `expr:"summary"`
	ImageFile    string   `expr:"imageFile"`
	Price        float64  `expr:"price"`
	Currency     string   `expr:"currency"`
	CategoryType string   `expr:"categoryType"`
	NofPages     uint     `expr:"nofPages"`
	NofMinutes   uint     `expr:"nofMinutes"`
	Authors      []string `expr:"authors"`
}

func EnvFor(p domain.Product) Env {
	price, _ := p.Price.Float64()
	env := Env{
		ID:        p.ID.String(),
		Name:      p.Name,
		Category:  p.Category,
		Summary:   p.Summary,
		ImageFile: p.ImageFile,
		Price:     price,
		Currency:  string(p.Currency),
		Authors:   []string{},
	}
	switch c := p.CategoryInfo.(type) {
	case domain.BooksCategory:
		env.CategoryType = string(c.CategoryType())
		env.NofPages = c.NofPages
		env.Authors = append(env.Authors, c.Authors...)
	case domain.MoviesCategory:
		env.CategoryType = string(c.CategoryType())
		env.NofMinutes = c.NofMinutes
	}
	return env
}

type Compiler struct {
	programs *cachemem.Cache[*vm.Program]
}

func NewCompiler(programs *cachemem.Cache[*vm.Program]) *Compiler {
	return &Compiler{programs: programs}
}

func (c *Compiler) Compile(expression string) (usecase.ProductMatcher, error) {
	if len(expression) > maxExpressionLength {
		return nil, fmt.Errorf("%w: expression longer than %d characters", domain.ErrInvalidFilter, maxExpressionLength)
	}
	if program, ok := c.programs.Get(expression); ok {
		return matcher{program: program}, nil
	}
	program, err := expr.Compile(expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFilter, cleanErrorMessage(err))
	}
	c.programs.Put(expression, program, time.Hour)
	return matcher{program: program}, nil
}

type matcher struct {
	program *vm.Program
}

func (m matcher) Match(p domain.Product) (bool, error) {
	out, err := expr.Run(m.program, EnvFor(p))
	if err != nil {
		return false, fmt.Errorf("%w: %s", domain.ErrInvalidFilter, cleanErrorMessage(err))
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: expression did not return a boolean", domain.ErrInvalidFilter)
	}
	return ok, nil
}

// cleanErrorMessage drops the caret lines expr adds under the source.
func cleanErrorMessage(err error) string {
	lines := strings.Split(err.Error(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Trim(line, " \t.|^") == "" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return err.Error()
	}
	return strings.Join(kept, "; ")
}
