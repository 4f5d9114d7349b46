package domain

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Question is one entry of the answer key.
type Question struct {
	ID     int    `yaml:"id"`
	Text   string `yaml:"text"`
	Answer string `yaml:"answer"`
}

// AnswerKey is the immutable set of questions a submission is graded
// against. It is built once at startup and only read afterwards.
type AnswerKey struct {
	questions map[int]Question
	ids       []int
}

// NewAnswerKey validates and indexes the given questions. Ids must be
// positive and unique, and every question needs a non-blank answer.
func NewAnswerKey(questions []Question) (*AnswerKey, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("answer key has no questions")
	}

	key := &AnswerKey{questions: make(map[int]Question, len(questions))}
	for _, q := range questions {
		if q.ID <= 0 {
			return nil, fmt.Errorf("question id must be positive, got %d", q.ID)
		}
		if _, dup := key.questions[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		if strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("question %d has no answer", q.ID)
		}
		key.questions[q.ID] = q
		key.ids = append(key.ids, q.ID)
	}
	sort.Ints(key.ids)
	return key, nil
}

// Len is the number of questions every submission is scored against.
func (k *AnswerKey) Len() int {
	return len(k.questions)
}

func (k *AnswerKey) Lookup(id int) (Question, bool) {
	q, ok := k.questions[id]
	return q, ok
}

// Questions returns the questions ordered by id.
func (k *AnswerKey) Questions() []Question {
	out := make([]Question, 0, len(k.ids))
	for _, id := range k.ids {
		out = append(out, k.questions[id])
	}
	return out
}

type answerKeyFile struct {
	Questions []Question `yaml:"questions"`
}

// LoadAnswerKeyFile reads an answer key from a YAML document of the form
//
//	questions:
//	  - id: 1
//	    text: "..."
//	    answer: "CODON"
func LoadAnswerKeyFile(path string) (*AnswerKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer key file: %w", err)
	}
	var f answerKeyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse answer key file %s: %w", path, err)
	}
	return NewAnswerKey(f.Questions)
}

// DefaultAnswerKey returns the built-in molecular biology question set.
func DefaultAnswerKey() *AnswerKey {
	key, err := NewAnswerKey(defaultQuestions)
	if err != nil {
		panic(err)
	}
	return key
}

var defaultQuestions = []Question{
	{ID: 1, Answer: "CODON", Text: "¿Como se llama el triplete de nucleos que el ribosoma lee? Contiene la informacion para unir un aminoacido especifico?"},
	{ID: 2, Answer: "EL ARN CONTIENE URACILO", Text: "¿QUE DIFERENCIA IMPORTANTE EXISTE ENTRE EL ADN Y EL ARN?"},
	{ID: 3, Answer: "RETIRAR LOS INTRONES - TRANSCRIPCION", Text: "¿CUAL ES LA FUNCION DEL SPLICING Y EN QUE ETAPA DEL DOGMA CENTRAL DE LA BIOLOGIA PARTICIPA?"},
	{ID: 4, Answer: "PROTEINAS", Text: "LA TRADUCCION ES UN PROCESO QUE PERMITE FORMAR"},
	{ID: 5, Answer: "ES EL PROCESO DE SINTESIS DE ARN", Text: "¿QUE ES EL PROCESO DE TRANSCRIPCION?"},
	{ID: 6, Answer: "AUG", Text: "¿QUE CODON SEÑALA DONDE COMIENZA LA TRADUCCION?"},
	{ID: 7, Answer: "TRANSCRIPCION Y TRADUCCION", Text: "MECANISMOS INVOLUCRADOS EN LA SINTESIS DE UNA PROTEINA"},
	{ID: 8, Answer: "CORTE Y EMPALME", Text: "¿A QUE SE DEBE SOMETER EL TRANSCRITO DE ARN EN EUCARIOTAS?"},
	{ID: 9, Answer: "FLUJO DE INFORMACION GENETICA DE DNA A PROTEINA", Text: "A QUE SE REFIERE EL DOGMA CENTRAL DE LA BIOLOGIA"},
	{ID: 10, Answer: "BASES NITROGENADAS - ARNm", Text: "LOS CODONES SON TRIPLETES DE ___ PRESENTES EN ___"},
	{ID: 11, Answer: "ADN HELICASA", Text: "ENZIMA QUE ROMPE LOS PUENTES DE HIDROGENO, DESENRROLLANDOLOS EN 2 CADENAS ANTIPARALELAS"},
	{ID: 12, Answer: "URACILO", Text: "EL ADN NO CONTIENE"},
	{ID: 13, Answer: "TIMINA", Text: "EL ARN NO CONTIENE"},
	{ID: 14, Answer: "LIGASA", Text: "ENZIMA QUE UNE LOS FRAGMENTOS DE OKAZAKI"},
	{ID: 15, Answer: "TOPOISOMERASA", Text: "ENZIMA QUE DESARROLLA LA CADENA DE ADN"},
	{ID: 16, Answer: "PRIMASA", Text: "ENZIMA ENCARGADA DE LA SINTESIS DE LOS PRIMEROS CREADORES PARA LA SINTESIS DE ADN"},
	{ID: 17, Answer: "FRAGMENTOS DE OKAZAKI", Text: "FRAGMENTO DE ADN QUE SE SINTETIZA EN CONTRA DE LA DIRECCION DE LA HORQUILLA DE REPLICACION"},
}
