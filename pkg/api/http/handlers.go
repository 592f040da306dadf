package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aescanero/resforecast/internal/application/predictor"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// PredictRequest represents a prediction request. Elements are pointers so
// that JSON nulls can be told apart from zeros.
type PredictRequest struct {
	Features []*float64 `json:"features" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// FeatureErrorDetails describes the expected request schema
type FeatureErrorDetails struct {
	Expected int      `json:"expected"`
	Got      int      `json:"got"`
	Index    *int     `json:"index,omitempty"`
	Features []string `json:"features"`
}

// handlePredict handles a single prediction
func (s *Server) handlePredict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)

	var req PredictRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		s.respondBindError(c, err)
		return
	}

	prediction, err := s.predictor.PredictNullable(req.Features)
	if err != nil {
		s.respondPredictError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// errTrailingData is returned for a body holding more than one JSON value
var errTrailingData = errors.New("unexpected data after the JSON object")

// decodeJSON reads exactly one JSON value from body and validates its
// binding tags.
func decodeJSON(body io.Reader, obj interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errTrailingData
	}

	return binding.Validator.ValidateStruct(obj)
}

func (s *Server) respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: ErrorDetail{
				Code:    "REQUEST_TOO_LARGE",
				Message: "Request body exceeds the size limit",
				Details: gin.H{"limit": tooLarge.Limit},
			},
		})
		return
	}

	message := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		message = "features is required"
	}

	s.logger.Debug("invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: message,
		},
	})
}

func (s *Server) respondPredictError(c *gin.Context, err error) {
	var fe *predictor.FeatureError
	if errors.As(err, &fe) {
		details := FeatureErrorDetails{
			Expected: len(fe.Expected),
			Got:      fe.Got,
			Features: fe.Expected,
		}
		if fe.Index >= 0 {
			idx := fe.Index
			details.Index = &idx
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_FEATURES",
				Message: fe.Error(),
				Details: details,
			},
		})
		return
	}

	s.logger.Error("prediction failed",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INFERENCE_FAILED",
			Message: "Failed to compute prediction",
			Details: err.Error(),
		},
	})
}
