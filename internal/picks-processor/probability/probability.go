package probability

// Funções puras de conversão de odds; nenhuma depende de I/O ou estado.

// Implied converte um preço em odds americanas para probabilidade implícita
// (sem remoção de vig). Preço zero não representa cotação: retorna ok=false.
func Implied(price int) (float64, bool) {
	if price == 0 {
		return 0, false
	}
	if price > 0 {
		return 100.0 / (float64(price) + 100.0), true
	}
	abs := float64(-price)
	return abs / (abs + 100.0), true
}

// ImpliedPtr é a variante de Implied para campos opcionais do snapshot.
func ImpliedPtr(price *int) *float64 {
	if price == nil {
		return nil
	}
	p, ok := Implied(*price)
	if !ok {
		return nil
	}
	return &p
}

// DeVig normaliza um par de probabilidades implícitas para somar 1,
// removendo a margem do bookmaker. Com um único lado presente o valor é
// devolvido sem ajuste (a heurística de confiança trata o lado ausente,
// não a matemática de probabilidade). Soma não positiva nunca divide:
// retorna o par sem probabilidade.
func DeVig(pA, pB *float64) (*float64, *float64) {
	if pA == nil || pB == nil {
		return pA, pB
	}
	sum := *pA + *pB
	if sum <= 0 {
		return nil, nil
	}
	a := *pA / sum
	b := *pB / sum
	return &a, &b
}
