/*

Chainpow computes large powers (and power sums) of a Markov chain
transition matrix two ways and times both: directly with
exponentiation by squaring, and in the eigenbasis, where M^n is
V D^n V^-1 with a diagonal D, so powering is element-wise.

The basic usage looks like this:

	chainpow 1099511627776

, this will compute M^n for the built-in 6-state gambler's ruin chain
with both methods and report timings and the maximum difference.

You can change the chain and the method:

	chainpow -size 10 -p 0.6 -method eigen 1000000

, or supply a matrix (a whitespace-separated list of numbers) and sum
powers instead:

	chainpow -matrix m.txt -sum 100

To see all the options run:

	chainpow -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/chainpow/cache"
	"bitbucket.org/Davydov/chainpow/chain"
	"bitbucket.org/Davydov/chainpow/ematrix"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("chainpow")
var formatter = logging.MustStringFormatter(`%{message}`)

// directSumWarn is the number of iterations above which the direct
// power sum gets a cost warning.
const directSumWarn = 1e7

// command-line options
var (
	// application
	app = kingpin.New("chainpow", "large powers of Markov transition matrices, direct vs eigenbasis").Version(version)

	// power to compute
	nArg = app.Arg("n", "power to compute").Required().Uint64()

	// chain parameters
	size           = app.Flag("size", "number of states of the built-in gambler's ruin chain").Default("6").Int()
	pUp            = app.Flag("p", "step-up probability of the built-in chain").Default("0.5").Float64()
	matrixFileName = app.Flag("matrix", "read transition matrix from a file (overrides -size and -p)").ExistingFile()

	// computation parameters
	sum    = app.Flag("sum", "compute the sum of powers 1..n-1 instead of the n-th power").Bool()
	method = app.Flag("method", "computation method (direct, eigen or both)").
		Default("both").
		Enum("direct", "eigen", "both")
	tol = app.Flag("tol", "warn if methods differ by more than this").Default("1e-6").Float64()

	// input/output
	printRes  = app.Flag("print", "print the resulting matrix").Bool()
	cacheFile = app.Flag("cache", "bolt database file for caching results").String()
	outLogF   = app.Flag("log", "write log to a file").String()
	logLevel  = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()

	// technical
	cpuProfile = app.Flag("cpuprofile", "write cpu profile to file").String()
)

// getChain builds a chain from the command-line options.
func getChain() (*chain.Chain, error) {
	if *matrixFileName != "" {
		matrixFile, err := os.Open(*matrixFileName)
		if err != nil {
			return nil, err
		}
		defer matrixFile.Close()
		log.Infof("Reading transition matrix from %s", *matrixFileName)
		return chain.ReadMatrix(matrixFile)
	}
	log.Infof("Using gambler's ruin chain, %d states, p=%v", *size, *pUp)
	return chain.GamblersRuin(*size, *pUp)
}

// direct computes the power or power sum with the direct method.
func direct(c *chain.Chain, n uint64) *mat.Dense {
	if *sum {
		if n > directSumWarn {
			log.Warningf("Direct power sum needs %d matrix multiplications", n-1)
		}
		return ematrix.PowSum(nil, c.M, n)
	}
	return ematrix.Pow(nil, c.M, n)
}

// eigen computes the power or power sum in the eigenbasis.
func eigen(e *ematrix.EMatrix, n uint64) (*mat.Dense, error) {
	if *sum {
		return e.PowerSum(nil, n)
	}
	return e.Power(nil, n)
}

// compute runs one method, using the cache when possible.
func compute(c *chain.Chain, e *ematrix.EMatrix, cio *cache.CacheIO, meth string, n uint64) (*mat.Dense, MethodSummary, error) {
	ms := MethodSummary{Method: meth}
	key := cache.Key(c.M, n, *sum, meth)

	data, err := cio.Get(key)
	if err != nil {
		log.Error("Error reading cache:", err)
	}
	if data != nil {
		ms.Cached = true
		ms.Seconds = data.Seconds
		return data.Matrix(), ms, nil
	}

	start := time.Now()
	var res *mat.Dense
	switch meth {
	case "direct":
		res = direct(c, n)
	case "eigen":
		res, err = eigen(e, n)
		if err != nil {
			return nil, ms, err
		}
	}
	ms.Seconds = time.Since(start).Seconds()

	err = cio.Save(key, &cache.PowerData{
		Rows:    c.NStates,
		Data:    mat.DenseCopyOf(res).RawMatrix().Data,
		Method:  meth,
		Seconds: ms.Seconds,
	})
	if err != nil {
		log.Error("Error saving to cache:", err)
	}
	return res, ms, nil
}

func run(cio *cache.CacheIO) (summary *RunSummary) {
	startTime := time.Now()
	summary = &RunSummary{N: *nArg, Sum: *sum}

	c, err := getChain()
	if err != nil {
		log.Fatal(err)
	}
	summary.NStates = c.NStates
	log.Infof("Chain has %d states, absorbing: %v", c.NStates, c.Absorbing())
	log.Debugf("M=\n%v", c)

	if *sum {
		log.Infof("Computing sum of M^i for 1 <= i < %d", *nArg)
	} else {
		log.Infof("Computing M^%d", *nArg)
	}

	e := ematrix.NewEMatrix(c.M)

	var results []*mat.Dense
	methods := []string{*method}
	if *method == "both" {
		methods = []string{"direct", "eigen"}
	}
	for _, meth := range methods {
		res, ms, err := compute(c, e, cio, meth, *nArg)
		if err != nil {
			log.Fatalf("%s method failed: %v", meth, err)
		}
		log.Noticef("%s: %.6fs (cached=%v)", meth, ms.Seconds, ms.Cached)
		results = append(results, res)
		summary.Methods = append(summary.Methods, ms)
	}

	if len(results) == 2 {
		d := chain.MaxDiff(results[0], results[1])
		summary.MaxDiff = &d
		if d > *tol {
			log.Warningf("Methods differ by %g (tolerance %g)", d, *tol)
		} else {
			log.Noticef("Maximum difference between methods: %g", d)
		}
	}

	if *method != "direct" {
		slem, err := e.SLEM()
		if err == nil {
			summary.SLEM = &slem
			log.Noticef("Second largest eigenvalue modulus: %v", slem)
		}
	}

	if *printRes {
		chain.PrintM(results[len(results)-1])
	}

	endTime := time.Now()
	deltaT := endTime.Sub(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	return
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(level, "chainpow")
	logging.SetLevel(level, "ematrix")
	logging.SetLevel(level, "cache")

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	var db *bolt.DB
	if *cacheFile != "" {
		db, err = bolt.Open(*cacheFile, 0644, nil)
		if err != nil {
			log.Fatal("Error opening cache file:", err)
		}
		defer db.Close()
	}
	cio := cache.NewCacheIO(db)

	summary := run(cio)
	summary.Version = version
	summary.CommandLine = os.Args

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
