// Package scaling provides fitted feature scalers.
//
// Implementations:
//   - standard: (x - mean) / scale
//   - minmax: x*scale + min, optionally derived from the training data range
//
// Both support a forward Transform and an InverseTransform.
package scaling
