package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preptly/cbt-gateway/internal/calc"
	"github.com/preptly/cbt-gateway/internal/model"
	"github.com/preptly/cbt-gateway/internal/response"
	"github.com/preptly/cbt-gateway/internal/validator"
)

// CalculatorHandler evaluates expressions for the in-exam calculator.
type CalculatorHandler struct{}

// NewCalculatorHandler creates a new CalculatorHandler.
func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{}
}

// Calculate godoc
// POST /api/v1/tools/calculate
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	var req model.CalculateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := calc.Evaluate(req.Expression)
	if err != nil {
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrBadExpression, err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}
