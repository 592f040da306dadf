// Package regression provides the runtime form of the trained resource model:
// a stack of dense layers evaluated on row batches.
//
// Kernels follow the [input][unit] layout that Keras uses for Dense weights,
// so exported weights can be serialized without transposing.
package regression
