package scanner

import "strings"

// Action é uma ação de operador disparada por tecla de atalho.
type Action string

const (
	ActionToggleOperation    Action = "alternar_tipo"
	ActionToggleMode         Action = "alternar_modo"
	ActionClearAll           Action = "limpar"
	ActionQuickQuantityUp    Action = "qtd_rapida_mais"
	ActionQuickQuantityDown  Action = "qtd_rapida_menos"
	ActionQuickQuantityReset Action = "qtd_rapida_reset"
	ActionToggleCamera       Action = "alternar_camera"
	ActionUndo               Action = "desfazer"
	ActionFinalize           Action = "finalizar"
)

// Shortcut liga uma tecla fixa a uma ação.
// Teclas imprimíveis ("+", "-") não disparam enquanto um campo de texto tem foco.
type Shortcut struct {
	Key    string
	Action Action
}

// Keymap resolve teclas em ações.
type Keymap struct {
	bindings map[string]Action
}

// DefaultShortcuts são os atalhos fixos da estação de leitura.
var DefaultShortcuts = []Shortcut{
	{Key: "F2", Action: ActionToggleOperation},
	{Key: "F3", Action: ActionToggleMode},
	{Key: "F4", Action: ActionClearAll},
	{Key: "+", Action: ActionQuickQuantityUp},
	{Key: "-", Action: ActionQuickQuantityDown},
	{Key: "F6", Action: ActionQuickQuantityReset},
	{Key: "F7", Action: ActionToggleCamera},
	{Key: "F8", Action: ActionUndo},
	{Key: "CTRL+Z", Action: ActionUndo},
	{Key: "F10", Action: ActionFinalize},
}

// NewKeymap monta o mapa a partir dos atalhos informados.
func NewKeymap(shortcuts []Shortcut) *Keymap {
	km := &Keymap{bindings: make(map[string]Action, len(shortcuts))}
	for _, s := range shortcuts {
		km.bindings[normalizeKey(s.Key)] = s.Action
	}
	return km
}

// Resolve devolve a ação da tecla. Com inTextField, teclas imprimíveis são
// entregues ao campo de texto e não disparam atalho.
func (k *Keymap) Resolve(key string, inTextField bool) (Action, bool) {
	norm := normalizeKey(key)
	action, ok := k.bindings[norm]
	if !ok {
		return "", false
	}
	if inTextField && isPrintable(norm) {
		return "", false
	}
	return action, true
}

// Bindings lista os atalhos registrados (ordem não garantida).
func (k *Keymap) Bindings() map[string]Action {
	out := make(map[string]Action, len(k.bindings))
	for key, a := range k.bindings {
		out[key] = a
	}
	return out
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(key), " ", ""))
}

func isPrintable(key string) bool {
	return len([]rune(key)) == 1
}
