package usecase

type stage string

const (
	stageValidate  stage = "validate"
	stageDedup     stage = "dedup_check"
	stageFetch     stage = "fetch"
	stageSummarize stage = "summarize"
	stageStore     stage = "store"
	stageLedger    stage = "ledger"
	stageNotify    stage = "notify"
)

type outcomeStatus int

const (
	outcomeStored outcomeStatus = iota
	outcomeInvalid
	outcomeDuplicate
	outcomeFailed
)

// articleOutcome is the result of pushing one candidate through the stages.
// stage names where a failed or skipped article stopped. ledgerErr may be set
// on a stored article whose ledger write failed.
type articleOutcome struct {
	status    outcomeStatus
	stage     stage
	err       error
	ledgerErr error
}

func stored(ledgerErr error) articleOutcome {
	return articleOutcome{status: outcomeStored, stage: stageLedger, ledgerErr: ledgerErr}
}

func failed(s stage, err error) articleOutcome {
	return articleOutcome{status: outcomeFailed, stage: s, err: err}
}
