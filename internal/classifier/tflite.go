// tflite.go TensorFlow Lite backed classifier
package classifier

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/logging"
)

// TFLiteClassifier runs digit inference with a TensorFlow Lite interpreter.
// The interpreter keeps mutable scratch state between invocations, so
// concurrent Infer calls are serialized with a mutex.
type TFLiteClassifier struct {
	interpreter *tflite.Interpreter
	model       *tflite.Model
	mu          sync.Mutex
}

// NewTFLiteClassifier loads the model file named in the settings and
// prepares an interpreter. Loading happens once, at process start; any
// failure here is a startup error, never a first-request crash.
func NewTFLiteClassifier(settings *conf.Settings) (*TFLiteClassifier, error) {
	start := time.Now()
	log := logging.ForService("classifier")

	modelData, err := os.ReadFile(settings.Model.Path)
	if err != nil {
		return nil, errors.New(err).
			Component("classifier").
			Category(errors.CategoryModelLoad).
			Context("model_path", settings.Model.Path).
			Timing("model-load", time.Since(start)).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.Newf("cannot load TensorFlow Lite model").
			Component("classifier").
			Category(errors.CategoryModelInit).
			Context("model_path", settings.Model.Path).
			Context("model_size_kb", len(modelData)/1024).
			Build()
	}

	threads := settings.Model.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, userData any) {
		log.Error("TFLite error", "message", msg)
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		model.Delete()
		return nil, errors.Newf("cannot create interpreter").
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		model.Delete()
		return nil, errors.Newf("tensor allocation failed").
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}

	log.Info("digit model initialized",
		"model_path", settings.Model.Path,
		"threads", threads,
		"total_cpus", runtime.NumCPU())

	return &TFLiteClassifier{
		interpreter: interpreter,
		model:       model,
	}, nil
}

// Infer runs the interpreter on a normalized tensor and returns the raw
// 10-way score vector.
func (c *TFLiteClassifier) Infer(ctx context.Context, tensor []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	inputTensor := c.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, errors.Newf("cannot get input tensor").
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}
	copy(inputTensor.Float32s(), tensor)

	if status := c.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.Newf("tensor invoke failed: %v", status).
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	outputTensor := c.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return nil, errors.Newf("cannot get output tensor").
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	size := outputTensor.Dim(outputTensor.NumDims() - 1)
	scores := make([]float32, size)
	copy(scores, outputTensor.Float32s())
	return scores, nil
}

// Close releases the interpreter and model.
func (c *TFLiteClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interpreter != nil {
		c.interpreter.Delete()
		c.interpreter = nil
	}
	if c.model != nil {
		c.model.Delete()
		c.model = nil
	}
	return nil
}

// compile-time interface check
var _ Classifier = (*TFLiteClassifier)(nil)
