package db

import (
	"strconv"

	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

func newClient() *dynamodb.DynamoDB {
	endpoint := constants.GetDynamoEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		panic("Could not create a new DynamoDB session because " + err.Error())
	}
	return dynamodb.New(sess)
}

// PutSessionScore stores the headline numbers of a finished session.
func PutSessionScore(rec model.SessionRecord) error {
	client := newClient()
	item := map[string]*dynamodb.AttributeValue{
		"PK":         {S: aws.String(rec.ID)},
		"FinishedAt": {N: aws.String(strconv.FormatInt(rec.FinishedAt, 10))},
		"Average":    {N: aws.String(strconv.FormatFloat(rec.AverageOver, 'f', 2, 64))},
		"Victory":    {BOOL: aws.Bool(rec.Victory)},
		"Exercises":  {N: aws.String(strconv.Itoa(len(rec.Exercises)))},
	}
	if len(rec.Exercises) > 0 {
		var scores []*dynamodb.AttributeValue
		for _, ex := range rec.Exercises {
			scores = append(scores, &dynamodb.AttributeValue{
				N: aws.String(strconv.Itoa(ex.Summary.RoundedOverall())),
			})
		}
		item["Scores"] = &dynamodb.AttributeValue{L: scores}
	}
	_, err := client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(constants.SessionTable),
		Item:      item,
	})
	return err
}

type SessionScore struct {
	ID         string
	FinishedAt int64
	Average    float64
	Victory    bool
	Exercises  int
}

// GetSessionScores fetches stored scores by session ID, up to the
// BatchGetItem limit of ten at a time.
func GetSessionScores(ids []string) map[string]SessionScore {
	if len(ids) > 10 {
		panic("Not supposed to pass in more than 10 ids!")
	}

	res := make(map[string]SessionScore)
	if len(ids) == 0 {
		return res
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		})
	}

	client := newClient()
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			constants.SessionTable: {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		panic("Error from DynamoDB: " + err.Error())
	}

	for _, v := range dbres.Responses[constants.SessionTable] {
		var s SessionScore
		s.ID = *v["PK"].S
		if v["FinishedAt"] != nil && v["FinishedAt"].N != nil {
			s.FinishedAt, _ = strconv.ParseInt(*v["FinishedAt"].N, 10, 64)
		}
		if v["Average"] != nil && v["Average"].N != nil {
			s.Average, _ = strconv.ParseFloat(*v["Average"].N, 64)
		}
		if v["Victory"] != nil && v["Victory"].BOOL != nil {
			s.Victory = *v["Victory"].BOOL
		}
		if v["Exercises"] != nil && v["Exercises"].N != nil {
			s.Exercises, _ = strconv.Atoi(*v["Exercises"].N)
		}
		res[s.ID] = s
	}

	return res
}
