// Package predictor implements the resource prediction chain.
//
// A Predictor is built once at startup from the loaded artifacts and:
//   - Validates the request feature vector against the model schema
//   - Scales the features with the input scaler
//   - Runs the regression model
//   - Maps the output back to real units with the output scaler's inverse
//
// Nothing is mutated after construction, so request handlers share a single
// Predictor without locking.
package predictor
