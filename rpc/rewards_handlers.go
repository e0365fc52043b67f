package rpc

import (
	"encoding/json"
	"errors"
	"strings"

	"contribledger/native/rewards"
)

type accountParams struct {
	Account string `json:"account"`
}

type BalanceResult struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

type SupplyResult struct {
	Supply uint64 `json:"supply"`
}

type ContributionsResult struct {
	Account       string                        `json:"account"`
	Contributions []rewards.ContributionMetrics `json:"contributions"`
}

type OptionsResult struct {
	Options map[string]rewards.RedemptionOption `json:"options"`
}

type recordContributionParams struct {
	Caller  string                      `json:"caller"`
	Account string                      `json:"account"`
	Metrics rewards.ContributionMetrics `json:"metrics"`
}

type RecordContributionResult struct {
	Account string `json:"account"`
	Reward  uint64 `json:"reward"`
}

type redeemParams struct {
	Caller string `json:"caller"`
	Option string `json:"option"`
	Amount uint64 `json:"amount"`
}

type RedeemResult struct {
	Account string `json:"account"`
	Option  string `json:"option"`
	Burned  uint64 `json:"burned"`
}

type addOptionParams struct {
	Caller      string `json:"caller"`
	ID          string `json:"id"`
	Cost        uint64 `json:"cost"`
	Description string `json:"description"`
}

type updateOptionParams struct {
	Caller    string `json:"caller"`
	ID        string `json:"id"`
	Cost      uint64 `json:"cost"`
	Available bool   `json:"available"`
}

type setRewardRateParams struct {
	Caller string `json:"caller"`
	Rate   uint8  `json:"rate"`
}

type setMinThresholdParams struct {
	Caller    string `json:"caller"`
	Threshold uint64 `json:"threshold"`
}

type AckResult struct {
	OK bool `json:"ok"`
}

func decodeParams(req *RPCRequest, out interface{}) *RPCError {
	if len(req.Params) == 0 {
		return &RPCError{Code: codeInvalidParams, Message: "params required"}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: "invalid params", Data: err.Error()}
	}
	return nil
}

func requireAccount(account string) *RPCError {
	if strings.TrimSpace(account) == "" {
		return &RPCError{Code: codeInvalidParams, Message: "account required"}
	}
	return nil
}

// moduleError translates ledger engine failures into JSON-RPC errors so
// clients can distinguish caller mistakes from authorization failures.
func moduleError(err error) *RPCError {
	switch {
	case errors.Is(err, rewards.ErrUnauthorized):
		return &RPCError{Code: codeUnauthorized, Message: err.Error()}
	case errors.Is(err, rewards.ErrInvalidMetric),
		errors.Is(err, rewards.ErrInvalidCost),
		errors.Is(err, rewards.ErrInvalidRewardRate),
		errors.Is(err, rewards.ErrInsufficientRedemptionAmount):
		return &RPCError{Code: codeInvalidParams, Message: err.Error()}
	default:
		return &RPCError{Code: codeServerError, Message: err.Error()}
	}
}

func (s *Server) handleGetBalance(req *RPCRequest) (interface{}, *RPCError) {
	var params accountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAccount(params.Account); rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := s.node.BalanceOf(params.Account)
	if err != nil {
		return nil, moduleError(err)
	}
	return BalanceResult{Account: params.Account, Balance: balance}, nil
}

func (s *Server) handleGetSupply(_ *RPCRequest) (interface{}, *RPCError) {
	supply, err := s.node.Supply()
	if err != nil {
		return nil, moduleError(err)
	}
	return SupplyResult{Supply: supply}, nil
}

func (s *Server) handleGetContributions(req *RPCRequest) (interface{}, *RPCError) {
	var params accountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAccount(params.Account); rpcErr != nil {
		return nil, rpcErr
	}
	history, err := s.node.Contributions(params.Account)
	if err != nil {
		return nil, moduleError(err)
	}
	if history == nil {
		history = []rewards.ContributionMetrics{}
	}
	return ContributionsResult{Account: params.Account, Contributions: history}, nil
}

func (s *Server) handleListOptions(_ *RPCRequest) (interface{}, *RPCError) {
	options, err := s.node.RedemptionOptions()
	if err != nil {
		return nil, moduleError(err)
	}
	return OptionsResult{Options: options}, nil
}

func (s *Server) handleGetPolicy(_ *RPCRequest) (interface{}, *RPCError) {
	policy, err := s.node.Policy()
	if err != nil {
		return nil, moduleError(err)
	}
	return policy, nil
}

func (s *Server) handleRecordContribution(req *RPCRequest) (interface{}, *RPCError) {
	var params recordContributionParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAccount(params.Account); rpcErr != nil {
		return nil, rpcErr
	}
	reward, err := s.node.RecordContribution(params.Caller, params.Account, params.Metrics)
	if err != nil {
		return nil, moduleError(err)
	}
	return RecordContributionResult{Account: params.Account, Reward: reward}, nil
}

func (s *Server) handleRedeem(req *RPCRequest) (interface{}, *RPCError) {
	var params redeemParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAccount(params.Caller); rpcErr != nil {
		return nil, rpcErr
	}
	if strings.TrimSpace(params.Option) == "" {
		return nil, &RPCError{Code: codeInvalidParams, Message: "option required"}
	}
	if err := s.node.Redeem(params.Caller, params.Option, params.Amount); err != nil {
		return nil, moduleError(err)
	}
	return RedeemResult{Account: params.Caller, Option: params.Option, Burned: params.Amount}, nil
}

func (s *Server) handleAddOption(req *RPCRequest) (interface{}, *RPCError) {
	var params addOptionParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if strings.TrimSpace(params.ID) == "" {
		return nil, &RPCError{Code: codeInvalidParams, Message: "option id required"}
	}
	if err := s.node.AddRedemptionOption(params.Caller, params.ID, params.Cost, params.Description); err != nil {
		return nil, moduleError(err)
	}
	return AckResult{OK: true}, nil
}

func (s *Server) handleUpdateOption(req *RPCRequest) (interface{}, *RPCError) {
	var params updateOptionParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if strings.TrimSpace(params.ID) == "" {
		return nil, &RPCError{Code: codeInvalidParams, Message: "option id required"}
	}
	if err := s.node.UpdateRedemptionOption(params.Caller, params.ID, params.Cost, params.Available); err != nil {
		return nil, moduleError(err)
	}
	return AckResult{OK: true}, nil
}

func (s *Server) handleSetRewardRate(req *RPCRequest) (interface{}, *RPCError) {
	var params setRewardRateParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.node.SetRewardRate(params.Caller, params.Rate); err != nil {
		return nil, moduleError(err)
	}
	return AckResult{OK: true}, nil
}

func (s *Server) handleSetMinThreshold(req *RPCRequest) (interface{}, *RPCError) {
	var params setMinThresholdParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.node.SetMinContributionThreshold(params.Caller, params.Threshold); err != nil {
		return nil, moduleError(err)
	}
	return AckResult{OK: true}, nil
}
