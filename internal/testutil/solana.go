package testutil

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
)

// NewPubkey returns a random public key.
func NewPubkey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// TokenAccountData encodes a 165 byte SPL token account.
func TokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}

// MintData encodes an 82 byte SPL mint with a mint authority set.
func MintData(authority solana.PublicKey, supply uint64, decimals uint8) []byte {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	copy(data[4:36], authority[:])
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1 // initialized
	return data
}

// FakeAccount is an account served by RPCServer.
type FakeAccount struct {
	Owner solana.PublicKey
	Data  []byte
}

// RPCServer is a minimal JSON-RPC server answering getAccountInfo.
type RPCServer struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]FakeAccount
	failing  map[string]bool
	calls    map[string]int
}

// NewRPCServer starts a fake RPC endpoint closed with the test.
func NewRPCServer(t *testing.T) *RPCServer {
	t.Helper()
	s := &RPCServer{
		accounts: make(map[string]FakeAccount),
		failing:  make(map[string]bool),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetAccount serves account at address.
func (s *RPCServer) SetAccount(address solana.PublicKey, account FakeAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[address.String()] = account
}

// FailAccount makes lookups of address answer with a JSON-RPC error.
func (s *RPCServer) FailAccount(address solana.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[address.String()] = true
}

// Calls returns how many times address was looked up.
func (s *RPCServer) Calls(address solana.PublicKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[address.String()]
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func (s *RPCServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil || len(req.Params) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var address string
	_ = json.Unmarshal(req.Params[0], &address)

	s.mu.Lock()
	s.calls[address]++
	account, found := s.accounts[address]
	failing := s.failing[address]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if failing {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32005, "message": "node is behind"},
		})
		return
	}

	var value interface{}
	if found {
		value = map[string]interface{}{
			"data":       []string{base64.StdEncoding.EncodeToString(account.Data), "base64"},
			"executable": false,
			"lamports":   2039280,
			"owner":      account.Owner.String(),
			"rentEpoch":  0,
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result": map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value":   value,
		},
	})
}
